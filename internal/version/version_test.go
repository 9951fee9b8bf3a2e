package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	i := Get()
	assert.Equal(t, Version, i.Version)
	assert.Equal(t, runtime.Version(), i.GoVersion)
	assert.NotEmpty(t, i.GitCommit)
}

func TestString(t *testing.T) {
	s := String()
	assert.True(t, strings.HasPrefix(s, "metaregistry "+Version))
	assert.Contains(t, s, runtime.Version())
}
