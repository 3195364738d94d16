// Package docs registers the booklend API document with swag so gin-swagger can serve it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a member",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Email already registered"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in and obtain a bearer token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/books": {
            "get": {
                "tags": ["catalog"],
                "summary": "List books ordered by title",
                "parameters": [{"in": "query", "name": "category", "type": "string", "default": "All"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["catalog"],
                "summary": "Add a book (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate title"}}
            }
        },
        "/categories": {
            "get": {"tags": ["catalog"], "summary": "Distinct categories", "responses": {"200": {"description": "OK"}}}
        },
        "/books/{title}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Book detail",
                "parameters": [{"in": "path", "name": "title", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/books/{title}/copies": {
            "post": {
                "tags": ["catalog"],
                "summary": "Add copies to a book (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "title", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"copies": {"type": "integer"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/members": {
            "post": {
                "tags": ["auth"],
                "summary": "Create a member or administrator (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/loans": {
            "get": {
                "tags": ["loans"],
                "summary": "Loans of the authenticated member, most recent first",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["loans"],
                "summary": "Borrow a book",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLoanRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/LoanResponse"}},
                    "403": {"description": "admin not permitted"},
                    "404": {"description": "book not found"},
                    "409": {"description": "no copies available"}
                }
            }
        },
        "/loans/{loan_id}": {
            "get": {
                "tags": ["loans"],
                "summary": "Loan detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "loan_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "loan not found"}}
            },
            "delete": {
                "tags": ["loans"],
                "summary": "Delete a returned loan",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "loan_id", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}, "409": {"description": "not returned"}}
            }
        },
        "/loans/{loan_id}/renewals": {
            "post": {
                "tags": ["loans"],
                "summary": "Renew a loan",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "loan_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "already returned"}, "422": {"description": "overdue or renewal limit reached"}}
            }
        },
        "/loans/{loan_id}/returns": {
            "post": {
                "tags": ["loans"],
                "summary": "Return a loan",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "loan_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "already returned"}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "display_name", "password"],
            "properties": {"email": {"type": "string"}, "display_name": {"type": "string"}, "password": {"type": "string"}}
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "CreateBookRequest": {
            "type": "object",
            "required": ["title", "category"],
            "properties": {
                "title": {"type": "string"},
                "category": {"type": "string"},
                "genres": {"type": "array", "items": {"type": "string"}},
                "authors": {"type": "array", "items": {"type": "string"}},
                "description": {"type": "string"},
                "copies": {"type": "integer"}
            }
        },
        "CreateLoanRequest": {
            "type": "object",
            "required": ["book_title"],
            "properties": {"book_title": {"type": "string"}}
        },
        "LoanResponse": {
            "type": "object",
            "properties": {
                "loan_id": {"type": "string"},
                "member_id": {"type": "string"},
                "book_id": {"type": "string"},
                "book_title": {"type": "string"},
                "borrowed_at": {"type": "string", "format": "date-time"},
                "due_at": {"type": "string", "format": "date-time"},
                "returned_at": {"type": "string", "format": "date-time"},
                "renewal_count": {"type": "integer"},
                "status": {"type": "string", "enum": ["active", "overdue", "returned"]},
                "overdue": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"https"},
	Title:            "booklend API",
	Description:      "Catalog browsing and the book loan lifecycle.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
