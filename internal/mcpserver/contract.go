package mcpserver

// PostFormatContract describes the post layout LLM consumers must follow
// when creating posts.
const PostFormatContract = `# Blog Post Format Contract

Every post is a Markdown file that starts with a metadata header.

## Structure

` + "```" + `markdown
---
title: "Human-readable title"
date: 2025-01-15T09:30:00Z
author: Ann Lee
tags:
  - go
  - tooling
categories:
  - Programming
draft: true
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **The header comes first.** The ` + "`---`" + ` line must be the first line of the file.
2. **Flat keys only.** Each field is ` + "`key: value`" + ` on one line. Nested maps are not read.
3. **Lists** are written as an empty ` + "`key:`" + ` line followed by items indented by
   exactly two spaces: ` + "`  - item`" + `.
4. **` + "`title`" + `** is required and is written in double quotes.
5. **` + "`date`" + `** is ISO-8601 (date or date-time). It is filled in automatically on create.
6. **` + "`draft`" + `** is ` + "`true`" + ` unless it is exactly ` + "`false`" + `. A missing field means draft.
7. **File names** are derived from the title: lowercase, every run of characters
   outside a-z and 0-9 becomes one hyphen, and local posts get a ` + "`YYYY-MM-DD-`" + ` prefix.
8. Quotes around values are stripped once; everything else is kept as text.

## Creating posts

Use the ` + "`create_post`" + ` tool with a title and a Markdown body. Do not include the
header in the body; the tool writes it. Creating a post whose file name already
exists fails and leaves the existing post unchanged.
`
