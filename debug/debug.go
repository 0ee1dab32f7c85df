package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Events bool
	Alias  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Events = boolEnv("YAMEL_DEBUG_EVENTS")
	d.Alias = boolEnv("YAMEL_DEBUG_ALIAS")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Events() bool {
	return d.Events
}
func Alias() bool {
	return d.Alias
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
