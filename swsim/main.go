// Command swsim runs the cycle-accurate stopwatch simulation.
package main

import "github.com/NasaHari/bitsilicon-dd-assignments/swsim/cmd"

func main() {
	cmd.Execute()
}
