package models

import (
	"html/template"
	"time"
)

// FlashKind selects how a flash message is styled.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashNotice  FlashKind = "notice"
	FlashError   FlashKind = "error"
)

// Flash is the inline feedback shown after a mutation.
type Flash struct {
	Kind FlashKind
	Text string
}

// StackInfo lists the environment facts shown in the info panel.
type StackInfo struct {
	OS       string
	Server   string
	Database string
	Runtime  string
}

// Page is the view model rendered on every request.
type Page struct {
	Flash     *Flash
	Users     []User
	ListError bool
	Stack     StackInfo
	CSRFField template.HTML
	Elapsed   time.Duration
}
