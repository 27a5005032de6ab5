package main

import "github.com/pinecove/rental-booking-backend/internal/cli"

func main() {
	cli.Execute()
}
