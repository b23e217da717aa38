// Package docs registers the storefront's Swagger document with swag so
// gin-swagger can serve it under /swagger. Regenerate with
//
//	swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Jossie Fancies",
            "email": "admin@jossiefancies.com"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/categories/": {
            "get": {
                "tags": ["categories"],
                "summary": "List active categories with product counts",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/categories/{id}/products/": {
            "get": {
                "tags": ["categories"],
                "summary": "List the active products of a category",
                "parameters": [
                    {"type": "string", "description": "Category id or slug", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/products/": {
            "get": {
                "tags": ["products"],
                "summary": "Search and filter the catalog",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "boolean", "name": "is_featured", "in": "query"},
                    {"type": "string", "name": "ordering", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/products/featured/": {
            "get": {
                "tags": ["products"],
                "summary": "Up to eight featured products",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cart/": {
            "get": {
                "tags": ["cart"],
                "summary": "The current shopper's cart",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cart/add_item/": {
            "post": {
                "tags": ["cart"],
                "summary": "Add a product to the cart",
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Insufficient stock"}}
            }
        },
        "/orders/": {
            "post": {
                "tags": ["orders"],
                "summary": "Check out the cart and get the WhatsApp link",
                "consumes": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Cart empty or stock short"}}
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "List orders (admin)",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/login/": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in and receive a token pair",
                "consumes": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/admin/dashboard/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "Dashboard statistics",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds the templated fields. The server sets Version and Host
// at start-up.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Jossie Fancies Storefront API",
	Description:      "Catalog, cart, WhatsApp checkout and admin API for the Jossie Fancies home-goods shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
