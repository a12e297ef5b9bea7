package main

// General API documentation for swaggo. Run `swag init -g cmd/batchgen/docs.go -o internal/httpapi/docs` to regenerate.
//
// @title           batchgen API
// @version         1.0
// @description     Batch text generation against a loaded instruction-tuned model.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
