// Package docs registers the OpenAPI description of the batchgen HTTP API
// with swag. It is linked only into builds tagged swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/generate": {
            "post": {
                "description": "Formats every question with the server's prompt template and runs them as one batch.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate answers for a batch of questions",
                "parameters": [
                    {
                        "description": "Batch to generate",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.GenerateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.GenerateRequest": {
            "type": "object",
            "properties": {
                "questions": {"type": "array", "items": {"type": "string"}},
                "max_tokens": {"type": "integer", "example": 256},
                "temperature": {"type": "number", "example": 0.7},
                "top_p": {"type": "number", "example": 0.9},
                "presence_penalty": {"type": "number", "example": 0.5},
                "seed": {"type": "integer", "example": 42},
                "stop": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.Completion": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "question": {"type": "string"},
                "prompt": {"type": "string"},
                "text": {"type": "string"},
                "tokens": {"type": "integer"},
                "finish_reason": {"type": "string"}
            }
        },
        "types.Report": {
            "type": "object",
            "properties": {
                "tokens": {"type": "integer"},
                "elapsed_seconds": {"type": "number"},
                "tokens_per_second": {"type": "number"}
            }
        },
        "types.GenerateResponse": {
            "type": "object",
            "properties": {
                "completions": {"type": "array", "items": {"$ref": "#/definitions/types.Completion"}},
                "report": {"$ref": "#/definitions/types.Report"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "runtime": {"type": "string"},
                "model_path": {"type": "string"},
                "template": {"type": "string"},
                "state": {"type": "string"},
                "queue_len": {"type": "integer"},
                "max_queue_depth": {"type": "integer"},
                "batches_total": {"type": "integer"},
                "tokens_total": {"type": "integer"},
                "last_error": {"type": "string"},
                "uptime_seconds": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "batchgen API",
	Description:      "Batch text generation against a loaded instruction-tuned model.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
