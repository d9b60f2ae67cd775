package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitForQuery(t *testing.T, raw string) *int {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	url := "/classes"
	if raw != "" {
		url += "?limit=" + raw
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	c.Request = req
	return limitFromQuery(c)
}

func TestLimitFromQuery(t *testing.T) {
	assert.Nil(t, limitForQuery(t, ""))
	assert.Nil(t, limitForQuery(t, "abc"))
	assert.Nil(t, limitForQuery(t, "-5"))

	zero := limitForQuery(t, "0")
	require.NotNil(t, zero)
	assert.Zero(t, *zero)

	six := limitForQuery(t, "6")
	require.NotNil(t, six)
	assert.Equal(t, 6, *six)
}
