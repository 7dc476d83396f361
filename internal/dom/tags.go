package dom

var inlineTags = map[string]struct{}{
	"a": {}, "abbr": {}, "audio": {}, "b": {}, "bdo": {}, "br": {}, "button": {},
	"canvas": {}, "cite": {}, "code": {}, "command": {}, "data": {}, "datalist": {},
	"dfn": {}, "em": {}, "embed": {}, "i": {}, "iframe": {}, "img": {}, "input": {},
	"kbd": {}, "keygen": {}, "label": {}, "mark": {}, "math": {}, "meter": {},
	"noscript": {}, "object": {}, "output": {}, "picture": {}, "progress": {}, "q": {},
	"ruby": {}, "samp": {}, "script": {}, "select": {}, "small": {}, "span": {},
	"strong": {}, "sub": {}, "sup": {}, "svg": {}, "textarea": {}, "time": {},
	"var": {}, "video": {}, "wbr": {},
}

var voidTags = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// IsInlineTag reports whether tag is an inline-level HTML element.
func IsInlineTag(tag string) bool {
	_, ok := inlineTags[tag]
	return ok
}

// IsVoidTag reports whether tag never has content or a closing tag.
func IsVoidTag(tag string) bool {
	_, ok := voidTags[tag]
	return ok
}

// IsHeaderTag reports whether tag is h1 through h6.
func IsHeaderTag(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// isRawTextTag reports elements whose content is emitted without escaping.
func isRawTextTag(tag string) bool {
	return tag == "script" || tag == "style"
}

// isPreformatted reports elements whose content keeps its whitespace.
func isPreformatted(tag string) bool {
	return tag == "pre" || tag == "textarea" || isRawTextTag(tag)
}
