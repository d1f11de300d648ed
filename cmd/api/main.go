package main

import "travelapproval/internal/cli"

// @title           Travel Approval API
// @version         1.0
// @description     Travel request submission, approval routing, audit trail and notifications.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cli.Execute()
}
