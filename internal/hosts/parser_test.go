package hosts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine_Entry(t *testing.T) {
	ln := parseLine("1.1.1.1 Example.com www.Example.com\n")
	assert.True(t, ln.isEntry())
	assert.Equal(t, "1.1.1.1", ln.IP)
	assert.Equal(t, []string{"Example.com", "www.Example.com"}, ln.Hostnames)
	assert.Equal(t, []string{"example.com", "www.example.com"}, ln.normalized)
	assert.False(t, ln.HasComment)
}

func TestParseLine_TrailingComment(t *testing.T) {
	ln := parseLine("10.0.0.1 dev.local # staging box\n")
	assert.True(t, ln.isEntry())
	assert.Equal(t, "10.0.0.1", ln.IP)
	assert.Equal(t, []string{"dev.local"}, ln.Hostnames)
	assert.True(t, ln.HasComment)
	assert.Equal(t, " staging box", ln.Comment)
}

func TestParseLine_CommentOnly(t *testing.T) {
	ln := parseLine("# The following lines are desirable for IPv6\n")
	assert.False(t, ln.isEntry())
	assert.True(t, ln.HasComment)
	assert.Equal(t, "# The following lines are desirable for IPv6", ln.Comment)
}

func TestParseLine_Blank(t *testing.T) {
	for _, raw := range []string{"", "\n", "   \n", "\t\n"} {
		ln := parseLine(raw)
		assert.False(t, ln.isEntry())
		assert.False(t, ln.HasComment)
	}
}

func TestParseLine_Unparsable(t *testing.T) {
	// Fewer than two tokens before any '#' means the line cannot be an
	// IP/hostname mapping and must be preserved as-is.
	tests := []string{
		"1.1.1.1\n",
		"onlyonetoken\n",
		"1.1.1.1 # lost its hostname\n",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			ln := parseLine(raw)
			assert.False(t, ln.isEntry())
			assert.Empty(t, ln.Hostnames)
		})
	}
}

func TestParseLine_TabSeparated(t *testing.T) {
	ln := parseLine("127.0.0.1\tlocalhost\tlocalhost.localdomain\n")
	assert.Equal(t, "127.0.0.1", ln.IP)
	assert.Equal(t, []string{"localhost", "localhost.localdomain"}, ln.Hostnames)
}

func TestHasHost(t *testing.T) {
	ln := parseLine("1.1.1.1 A.com b.com\n")
	assert.True(t, ln.hasHost("a.com"))
	assert.True(t, ln.hasHost("b.com"))
	assert.False(t, ln.hasHost("A.com")) // matching is on normalized form only
	assert.False(t, ln.hasHost("c.com"))
}

func TestRenderEntry(t *testing.T) {
	assert.Equal(t, "1.1.1.1 a.com b.com\n", renderEntry("1.1.1.1", []string{"a.com", "b.com"}, "", false))
	assert.Equal(t, "1.1.1.1 a.com # note\n", renderEntry("1.1.1.1", []string{"a.com"}, " note", true))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b"}, splitLines("a\nb"))
	assert.Equal(t, []string{"\n", "\n"}, splitLines("\n\n"))
}
