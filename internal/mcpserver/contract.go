package mcpserver

// NoteFormatContract describes the canonical note header format that
// LLM consumers should follow when creating notes.
const NoteFormatContract = `# Sowilo Note Format Contract

Every note stored in Sowilo MUST follow this structure.

## File naming

A file is a note when its lowercased base name, split on dots, contains the
segment ` + "`" + `note` + "`" + `. Examples:

- notes: ` + "`" + `ideas.note.txt` + "`" + `, ` + "`" + `note.md` + "`" + `, ` + "`" + `todo.note` + "`" + `, ` + "`" + `x.y.NOTE` + "`" + `
- not notes: ` + "`" + `notebook.txt` + "`" + `, ` + "`" + `mynote.txt` + "`" + `, ` + "`" + `notes.md` + "`" + `

Tools that create or read notes reject paths that do not follow the
convention.

## Header

The header lives in the FIRST FIVE lines of the file. Anything past line
five is body text and is never scanned.

` + "```" + `
Optional Title Line
[tag-one tag-two]

Body text, free form.
` + "```" + `

## Rules

1. **A tag list line** is ` + "`" + `[` + "`" + ` words ` + "`" + `]` + "`" + ` alone on one line. Words are
   separated by spaces. A word uses ASCII letters, digits, and the
   punctuation ` + "`" + `!@#$%^&*()=_+{}\|:;'",./<>?-` + "`" + ` (no spaces, square
   brackets, backticks, or tildes).
2. **The first tag list line ends the header.** Lines before it that are
   not tag lists fold into the title (joined with single spaces).
3. **An empty tag list ` + "`" + `[]` + "`" + ` is valid** and ends the header with no
   tags. Use it to stop a title from absorbing body lines.
4. **Tags are case-insensitive** and stored lowercased.
5. **Near misses are title text.** An unclosed bracket, an illegal
   character, or trailing text after ` + "`" + `]` + "`" + ` makes the line part of the
   title, not a tag list.
6. **No tag list in the first five lines** means the note has no tags and
   the five lines joined become the title.
7. **Encoding** is UTF-8 with newline-terminated lines.

## Example

` + "```" + `
Weekly standup 2025-01-20
[meeting-notes project-x]

Attendees: Alice, Bob.
` + "```" + `

A scan of this file reports:

` + "```" + `
@ weekly.note.txt
  > Weekly standup 2025-01-20
[ meeting-notes project-x ]
` + "```" + `
`
