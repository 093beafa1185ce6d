/*

Package pdfcpu is the trimmed pdfcpu PDF processing core this module builds on.
It reads a PDF into a model.Context, extracts images, fonts, content and
metadata, replaces page images, copies pages, and writes a context back out
as a PDF file. It has no command line interface of its own.

*/
package pdfcpu
