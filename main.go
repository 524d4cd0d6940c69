package main

import "campus-market-backend/cmd"

func main() {
	cmd.Run()
}
