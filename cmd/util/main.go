package main

import (
	"github.com/AElfProject/AElf-sub008/cmd/util/cmd"
)

func main() {
	cmd.Execute()
}
