package main

import (
	"github.com/searchktools/fastweb/core"
	"github.com/searchktools/fastweb/core/codec"
	"github.com/searchktools/fastweb/core/http"
)

func registerRoutes(e *core.Engine) {
	e.GET("/ping", ping)
	e.POST("/ping", ping)
	e.GET("/ping/{count}", pingCount)
}

func ping(req *http.Request) (*http.Response, error) {
	return http.Text(http.StatusOK, "pong"), nil
}

// pingCount echoes the body's fields with count set from the path
func pingCount(req *http.Request) (*http.Response, error) {
	fields := map[string]any{}
	if req.Body != "" {
		if err := codec.Default().Decode(req.Body, &fields); err != nil {
			return http.Text(http.StatusBadRequest, "invalid JSON body"), nil
		}
	}
	fields["count"] = req.Param("count")
	return http.JSON(http.StatusOK, fields)
}
