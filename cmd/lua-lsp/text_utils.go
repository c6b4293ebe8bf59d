package main

import "github.com/isshe/luacoderassist/internal/srcrange"

func getLine(content string, lineIndex int) string {
	start := 0
	currentLine := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			if currentLine == lineIndex {
				return content[start:i]
			}
			start = i + 1
			currentLine++
		}
	}
	if currentLine == lineIndex {
		return content[start:]
	}
	return ""
}

func getWordAtPosition(content string, line, char int) string {
	lineStr := getLine(content, line)
	if char < 0 || char >= len(lineStr) {
		// Cursor just past the last character still hits the word.
		if char == len(lineStr) && char > 0 {
			char--
		} else {
			return ""
		}
	}
	start := char
	for start > 0 && isIdentifierChar(lineStr[start-1]) {
		start--
	}
	end := char
	for end < len(lineStr) && isIdentifierChar(lineStr[end]) {
		end++
	}
	if start > end {
		return ""
	}
	return lineStr[start:end]
}

func isIdentifierChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// offsetForPosition maps an LSP line/character to a byte offset.
func offsetForPosition(content string, pos Position) int {
	offset := 0
	line := 0
	for line < pos.Line {
		next := indexByte(content, offset, '\n')
		if next < 0 {
			return len(content)
		}
		offset = next + 1
		line++
	}
	offset += pos.Character
	if offset > len(content) {
		offset = len(content)
	}
	return offset
}

// positionForOffset maps a byte offset to an LSP line/character.
func positionForOffset(content string, offset int) Position {
	if offset > len(content) {
		offset = len(content)
	}
	line := 0
	lineStart := 0
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return Position{Line: line, Character: offset - lineStart}
}

func rangeForOffsets(content string, start, end int) Range {
	if end < start {
		end = start
	}
	return Range{
		Start: positionForOffset(content, start),
		End:   positionForOffset(content, end),
	}
}

func rangeForSpan(content string, r srcrange.Range) Range {
	return rangeForOffsets(content, r.Start, r.End)
}

func indexByte(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
