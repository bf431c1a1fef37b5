package core_test

import (
	"fmt"

	"github.com/searchktools/fastweb/core"
	"github.com/searchktools/fastweb/core/http"
)

func ExampleEngine() {
	engine := core.NewEngine(core.Options{Host: "127.0.0.1", Port: 8080}, nil)

	engine.GET("/hello", func(req *http.Request) (*http.Response, error) {
		return http.Text(http.StatusOK, "Hello, World!"), nil
	})
	engine.GET("/api/users/{id}", func(req *http.Request) (*http.Response, error) {
		return http.JSON(http.StatusOK, map[string]string{"user_id": req.Param("id")})
	})
	engine.POST("/api/users", func(req *http.Request) (*http.Response, error) {
		return http.JSON(http.StatusCreated, map[string]string{"message": "User created"})
	})

	if err := engine.Err(); err != nil {
		fmt.Println(err)
		return
	}
	for _, route := range engine.Routes() {
		fmt.Println(route)
	}

	// Output:
	// GET /hello
	// GET /api/users/{id}
	// POST /api/users
}
