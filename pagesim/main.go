// Command pagesim replays memory access traces against a virtual memory
// model and reports page faults.
package main

import "github.com/sarchlab/pagesim/pagesim/cmd"

func main() {
	cmd.Execute()
}
