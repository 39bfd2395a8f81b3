// Package util holds file helpers shared by the commands.
package util

import "os"

// CreateFile creates filename for reading and writing. It fails if the file
// already exists.
func CreateFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0640)
}

// CreateOutput returns os.Stdout for "-" and otherwise creates filename with
// CreateFile.
func CreateOutput(filename string) (*os.File, error) {
	if filename == "-" {
		return os.Stdout, nil
	}
	return CreateFile(filename)
}

// DiscardOutput closes f and removes it unless it is os.Stdout.
func DiscardOutput(f *os.File) {
	if f == os.Stdout {
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
}
