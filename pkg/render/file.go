// Package render builds PHP source files from typed statements.
//
// Generated files are assembled from [Statement] values rather than string
// concatenation so that every literal taken from configuration passes through
// a single escaping routine. A [File] has three sections, rendered in order:
//
//	<?php
//	header...
//	body...
//	footer...
package render

import "strings"

// File is a generated PHP file.
type File struct {
	Header Block
	Body   Block
	Footer Block
}

// NewFile returns an empty file.
func NewFile() *File {
	return &File{}
}

// AddHeader appends statements to the header.
func (f *File) AddHeader(stmts ...Statement) *File {
	f.Header = append(f.Header, stmts...)
	return f
}

// AddBody appends statements to the body.
func (f *File) AddBody(stmts ...Statement) *File {
	f.Body = append(f.Body, stmts...)
	return f
}

// AddFooter appends statements to the footer.
func (f *File) AddFooter(stmts ...Statement) *File {
	f.Footer = append(f.Footer, stmts...)
	return f
}

// String renders the file.
func (f *File) String() string {
	var b strings.Builder
	b.WriteString("<?php\n")
	f.Header.write(&b, 0)
	f.Body.write(&b, 0)
	f.Footer.write(&b, 0)
	return b.String()
}
