// Package docs holds the OpenAPI description served by the Swagger UI.
// Regenerate with: swag init -g cmd/server/main.go
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
    "paths": {
        "/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List documents",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Offset for pagination", "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Limit for pagination (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "List of documents", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Process a document",
                "parameters": [
                    {"type": "file", "description": "Document to process (PDF, JPG, or PNG)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Comma-separated keywords for the abstract", "name": "keywords", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Document processed (status completed or partial)", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing file or unsupported type", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "No page could be processed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "504": {"description": "Processing timed out", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get document result by ID",
                "parameters": [{"type": "string", "description": "Document ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Document result", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Delete a document",
                "parameters": [{"type": "string", "description": "Document ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Document deleted", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/documents/{id}/abstract": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Recompute the abstract",
                "parameters": [
                    {"type": "string", "description": "Document ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Keywords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RecomputeAbstractRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated document result", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/documents/{id}/export/csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["documents"],
                "summary": "Export key-value pairs as CSV",
                "parameters": [{"type": "string", "description": "Document ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "CSV file", "schema": {"type": "file"}}}
            }
        },
        "/documents/{id}/export/xlsx": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["documents"],
                "summary": "Export extracted tables as XLSX",
                "parameters": [{"type": "string", "description": "Document ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "XLSX workbook", "schema": {"type": "file"}}}
            }
        },
        "/documents/{id}/source": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get source download URL",
                "parameters": [{"type": "string", "description": "Document ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Presigned URL", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Document or source not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/handler.APIError"}, "success": {"type": "boolean", "example": false}}
        },
        "handler.PagMeta": {
            "type": "object",
            "properties": {"limit": {"type": "integer"}, "offset": {"type": "integer"}, "total": {"type": "integer"}}
        },
        "handler.RecomputeAbstractRequest": {
            "type": "object",
            "properties": {"keywords": {"type": "array", "items": {"type": "string"}, "example": ["total", "due date"]}}
        },
        "handler.Response": {
            "type": "object",
            "properties": {"data": {}, "meta": {"$ref": "#/definitions/handler.PagMeta"}, "success": {"type": "boolean", "example": true}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "DocIntel API",
	Description:      "Document intelligence pipeline: OCR with quality fallback, layout structuring, contact extraction and keyword summaries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
