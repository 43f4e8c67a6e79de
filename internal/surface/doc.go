// Package surface emulates a contentEditable region over a
// golang.org/x/net/html tree.
//
// A DOM holds the editable content, a selection and a focus flag. Positions
// are text offsets counted over the content in document order: every rune of
// a text node counts as one position, and so does every atomic inline
// element (br, img, input, hr). A collapsed selection is the caret.
//
// Formatting commands mirror the browser's document.execCommand names:
//
//	bold, italic, underline            toggle an inline wrapper
//	justifyLeft/Center/Right/Full      set text-align on the enclosing blocks
//	insertUnorderedList/OrderedList    toggle or convert list structure
//	fontSize (value "1" to "7")        wrap in <font size="n">
package surface
