package umltext

import (
	"regexp"
	"strings"
)

var umlBlock = regexp.MustCompile(`(?s)@startuml.*?@enduml`)

// ReplySegments is an assistant reply split around its first UML block.
type ReplySegments struct {
	PreText  string
	UMLBlock string
	PostText string
}

// HasUML reports whether a complete @startuml...@enduml block was found.
func (s ReplySegments) HasUML() bool {
	return s.UMLBlock != ""
}

// SplitReply splits reply around the first non-greedy @startuml...@enduml
// span. Without a span the whole reply lands in PreText and UMLBlock is empty.
func SplitReply(reply string) ReplySegments {
	loc := umlBlock.FindStringIndex(reply)
	if loc == nil {
		return ReplySegments{PreText: strings.TrimSpace(reply)}
	}

	return ReplySegments{
		PreText:  strings.TrimSpace(reply[:loc[0]]),
		UMLBlock: strings.TrimSpace(reply[loc[0]:loc[1]]),
		PostText: strings.TrimSpace(reply[loc[1]:]),
	}
}
