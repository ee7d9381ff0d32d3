package outline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/413232903/markdown2word-mcp/internal/convert"
)

const sample = `---
title: 月报
---
# 概述

text

## 背景

### 细节

## 范围

# 结论
`

func texts(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Text)
	}
	return out
}

func TestFromMarkdown_NestsAndNumbers(t *testing.T) {
	o, err := FromMarkdown([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "月报", o.Title)
	assert.Equal(t, 5, o.Count())
	require.Equal(t, []string{"一、 概述", "二、 结论"}, texts(o.Headings))

	first := o.Headings[0]
	require.Equal(t, []string{"1、 背景", "2、 范围"}, texts(first.Children))
	assert.Equal(t, []string{"1） 细节"}, texts(first.Children[0].Children))
	assert.Equal(t, 3, first.Children[0].Children[0].Level)
	assert.Empty(t, o.Headings[1].Children)
}

func TestFromMarkdown_SkippedLevelAttachesToNearest(t *testing.T) {
	o, err := FromMarkdown([]byte("### deep\n\n# top\n\n#### under\n"))
	require.NoError(t, err)
	require.Len(t, o.Headings, 2)
	assert.Equal(t, 3, o.Headings[0].Level)
	require.Len(t, o.Headings[1].Children, 1)
	assert.Equal(t, 4, o.Headings[1].Children[0].Level)
}

func TestFromMarkdown_NoHeadings(t *testing.T) {
	o, err := FromMarkdown([]byte("just text\n"))
	require.NoError(t, err)
	assert.NotNil(t, o.Headings)
	assert.Zero(t, o.Count())
}

func TestFromDocx_MatchesGeneratedDocument(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.docx")
	_, err := convert.New(convert.Options{}, nil).Convert(context.Background(), convert.Request{
		Markdown: []byte(sample),
		Output:   out,
	})
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	got, err := Read(f, out)
	require.NoError(t, err)
	want, err := FromMarkdown([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "report", got.Title)
	assert.Equal(t, want.Headings, got.Headings)
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "notes.pdf")
	assert.ErrorContains(t, err, "unsupported file extension")
	assert.False(t, Supported("notes.pdf"))
	assert.True(t, Supported("A.MD"))
	assert.True(t, Supported("a.docx"))
}

func TestFromDocx_NotAZip(t *testing.T) {
	_, err := FromDocx(strings.NewReader("not a zip"), "x.docx")
	assert.Error(t, err)
}

func TestWrite_Indents(t *testing.T) {
	o, err := FromMarkdown([]byte("# a\n\n## b\n\n### c\n"))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, o.Write(&buf))
	assert.Equal(t, "一、 a\n  1、 b\n    1） c\n", buf.String())
}
