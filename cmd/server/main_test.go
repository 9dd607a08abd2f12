package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/franela/goblin"
)

func TestLoadEnvFile(t *testing.T) {
	g := goblin.Goblin(t)

	g.Describe("loadEnvFile", func() {
		dir := t.TempDir()

		g.It("Should ignore missing default file", func() {
			g.Assert(loadEnvFile(filepath.Join(dir, ".env"), false)).IsNil()
		})

		g.It("Should fail on missing file passed explicitly", func() {
			g.Assert(loadEnvFile(filepath.Join(dir, "missing.env"), true) != nil).IsTrue()
		})

		g.It("Should load variables without overriding the environment", func() {
			path := filepath.Join(dir, "test.env")
			content := "IMGURPROXY_ENV_FILE_ONLY=from-file\nIMGURPROXY_ENV_FILE_SHADOWED=from-file\n"
			g.Assert(os.WriteFile(path, []byte(content), 0o600)).IsNil()

			os.Unsetenv("IMGURPROXY_ENV_FILE_ONLY")
			os.Setenv("IMGURPROXY_ENV_FILE_SHADOWED", "from-env")
			defer os.Unsetenv("IMGURPROXY_ENV_FILE_ONLY")
			defer os.Unsetenv("IMGURPROXY_ENV_FILE_SHADOWED")

			g.Assert(loadEnvFile(path, true)).IsNil()
			g.Assert(os.Getenv("IMGURPROXY_ENV_FILE_ONLY")).Equal("from-file")
			g.Assert(os.Getenv("IMGURPROXY_ENV_FILE_SHADOWED")).Equal("from-env")
		})
	})
}
