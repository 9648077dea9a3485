package main

import "github.com/lariod12/meosjourney-sub000/cmd/mj/root"

func main() {
	root.Execute()
}
