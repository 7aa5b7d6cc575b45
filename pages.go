package main

import "fmt"

// PageSize is the default page size served by /search.
const PageSize int = 25

type PageSrc struct {
	Page  int
	First int
	Last  int
}

// GetResPages maps page srcPage of size srcPageSize onto the upstream pages
// of size resPageSize that cover it, with the slice of each to keep.
func GetResPages(srcPage int, srcPageSize int, resPageSize int) []PageSrc {
	var startOffset = (srcPage - 1) * srcPageSize
	var endOffset = startOffset + srcPageSize
	var firstPage = 1 + (startOffset / resPageSize)
	var first = (firstPage - 1) * resPageSize
	var last = first + resPageSize
	pages := []PageSrc{{
		Page:  firstPage,
		First: startOffset - first,
		Last:  min(resPageSize, endOffset-first),
	}}
	for last < endOffset {
		remain := endOffset - (last / resPageSize * resPageSize)
		last += resPageSize
		lastPage := last / resPageSize
		pages = append(pages, PageSrc{
			Page:  lastPage,
			First: 0,
			Last:  min(resPageSize, remain),
		})
	}
	return pages
}

func (p *PageSrc) String() string {
	return fmt.Sprintf("#%d [%d:%d]", p.Page, p.First, p.Last)
}
