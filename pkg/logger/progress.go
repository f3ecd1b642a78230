/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Progress is the build console log of a run.
// Lines are written whole, command output is passed through untouched.
type Progress struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
	lines  int
	err    error
}

// NewProgress returns a Progress writing to out, every line starts with prefix
func NewProgress(out io.Writer, prefix string) *Progress {
	return &Progress{out: out, prefix: prefix}
}

// Printf appends one line
func (p *Progress) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines++
	if _, err := io.WriteString(p.out, p.prefix+line); err != nil && p.err == nil {
		p.err = err
	}
}

// Write passes raw bytes through
func (p *Progress) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.out.Write(b)
	if err != nil && p.err == nil {
		p.err = err
	}
	return n, err
}

// Lines returns the number of lines written with Printf
func (p *Progress) Lines() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lines
}

// Err returns the first write error, lines written after it may be lost
func (p *Progress) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
