package io

import (
	stdio "io"
	"os"
	"testing"

	"vkrender/log"
)

func TestMain(m *testing.M) {
	log.SetSink(stdio.Discard)
	os.Exit(m.Run())
}
