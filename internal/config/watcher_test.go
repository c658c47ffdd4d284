package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestWatcherDeliversChangeOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeTestYAML(t, dir)

	w, err := NewWatcher(path)
	test.That(t, err, test.ShouldBeNil)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	changes := w.Watch(ctx)

	body, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	body = append(body, []byte("\nrobot:\n  name: mower-02\n")...)
	test.That(t, os.WriteFile(path, body, 0o644), test.ShouldBeNil)

	select {
	case ch := <-changes:
		test.That(t, ch.Err, test.ShouldBeNil)
		test.That(t, ch.Config, test.ShouldNotBeNil)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change notification")
	}
}

func TestDirOfReturnsParentDirectory(t *testing.T) {
	test.That(t, dirOf("/etc/robot/config.yaml"), test.ShouldEqual, "/etc/robot")
	test.That(t, dirOf("config.yaml"), test.ShouldEqual, ".")
	test.That(t, dirOf(filepath.Join("a", "b", "c.yaml")), test.ShouldEqual, filepath.Join("a", "b"))
}
