package core

import (
	"bytes"
	"fmt"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	minjs "github.com/tdewolff/minify/v2/js"
)

func NewHTMLMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", minhtml.Minify)
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)
	return m
}

func MinifyHTML(m *minify.M, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Minify("text/html", &buf, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}
	return buf.Bytes(), nil
}
