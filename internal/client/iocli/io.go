package iocli

// IO вывод команд CLI
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// Interactive reports whether output goes to a terminal
	Interactive() bool
}
