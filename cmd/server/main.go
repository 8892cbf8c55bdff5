package main

import "clinicportal/internal/app"

func main() {
	app.Run()
}
