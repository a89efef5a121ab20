/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

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

package main

import (
	"bytes"
	"fmt"
	"log"

	"github.com/go-logr/logr"
)

// stdLogSink is a minimal logr.LogSink backed by the standard library's
// log package. None of the retrieved example repos vendor a concrete logr
// backend (zap, logrus, ...) alongside github.com/go-logr/logr itself, so
// this command supplies the smallest sink that satisfies the interface the
// library package already depends on; see DESIGN.md.
type stdLogSink struct {
	name   string
	values []interface{}
}

var _ logr.LogSink = &stdLogSink{}

func (s *stdLogSink) Init(logr.RuntimeInfo) {}

func (s *stdLogSink) Enabled(int) bool { return true }

func (s *stdLogSink) Info(_ int, msg string, keysAndValues ...interface{}) {
	log.Print(s.format("INFO", msg, keysAndValues))
}

func (s *stdLogSink) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Print(s.format("ERROR", msg, append(keysAndValues, "error", err)))
}

func (s *stdLogSink) WithName(name string) logr.LogSink {
	next := *s
	if next.name != "" {
		next.name = next.name + "." + name
	} else {
		next.name = name
	}
	return &next
}

func (s *stdLogSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	next := *s
	next.values = append(append([]interface{}{}, s.values...), keysAndValues...)
	return &next
}

func (s *stdLogSink) format(level, msg string, keysAndValues []interface{}) string {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "[%s] %s", level, msg)
	if s.name != "" {
		fmt.Fprintf(buf, " logger=%s", s.name)
	}
	all := append(append([]interface{}{}, s.values...), keysAndValues...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(buf, " %v=%v", all[i], all[i+1])
	}
	return buf.String()
}
