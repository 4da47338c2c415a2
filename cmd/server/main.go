package main

import "paystub/internal/app/server"

func main() {
	server.Run()
}
