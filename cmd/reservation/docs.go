package main

// @title Stock Reservation Service API
// @version 1.0
// @description Time-bounded stock holds for checkout sessions, with logging, tracing and metrics
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/stock-reservations
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/stock-reservations/blob/main/LICENSE

// @host localhost:8084
// @BasePath /

// @tag.name Reservations
// @tag.description Reserve, complete and cancel stock holds

// @tag.name Sessions
// @tag.description Checkout session views

// @tag.name Stock
// @tag.description Available and on-hand stock

// @tag.name Admin
// @tag.description Operational endpoints

// @tag.name Health
// @tag.description Health check endpoints
