package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)

	// Not require authentication for these routes
	router.HandlerFunc(http.MethodPost, "/api/users", app.registerUser)
	router.HandlerFunc(http.MethodPost, "/api/users/login", app.login)
	router.HandlerFunc(http.MethodGet, "/api/posts", app.getPosts)
	router.HandlerFunc(http.MethodGet, "/api/posts/:slug", app.getPost)
	router.HandlerFunc(http.MethodGet, "/api/tags", app.getTags)

	// Require authentication for these routes
	router.HandlerFunc(http.MethodPost, "/api/admin/posts", app.requireAuthenticatedUser(app.createPost))
	router.HandlerFunc(http.MethodPut, "/api/admin/posts/:slug", app.requireAuthenticatedUser(app.updatePost))
	router.HandlerFunc(http.MethodDelete, "/api/admin/posts/:slug", app.requireAuthenticatedUser(app.deletePost))
	router.HandlerFunc(http.MethodGet, "/api/admin/posts", app.requireAuthenticatedUser(app.getAllPosts))
	router.HandlerFunc(http.MethodGet, "/api/admin/tags", app.requireAuthenticatedUser(app.getTagCatalog))
	router.HandlerFunc(http.MethodGet, "/api/admin/users", app.requireAuthenticatedUser(app.getUsers))
	router.HandlerFunc(http.MethodGet, "/api/admin/authors", app.requireAuthenticatedUser(app.getAuthors))

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
