package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/Pfischty/Kassensystem-und-Shotcounter/cmd/app"
)

// @contact.name   Pfischty
// @contact.url    https://github.com/Pfischty/Kassensystem-und-Shotcounter
//
// @license.name  MIT
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /auth/login
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
