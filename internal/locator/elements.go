package locator

import "regexp"

var (
	loginButtonName = regexp.MustCompile(`(?i)sign in|log in|login|submit`)
	loginButtonText = regexp.MustCompile(`(?i)sign in|log in|login`)
)

// UsernameField is the login form's username input.
func UsernameField() Chain {
	return NewChain("username input",
		Label("Username"),
		Placeholder(regexp.MustCompile(`(?i)username`)),
		Attribute(`input[name="username"]`),
		Type(`input[type="text"]`).First(),
	)
}

// PasswordField is the login form's password input.
func PasswordField() Chain {
	return NewChain("password input",
		Label("Password"),
		Placeholder(regexp.MustCompile(`(?i)password`)),
		Attribute(`input[name="password"]`),
		Type(`input[type="password"]`),
	)
}

// SubmitButton is the login form's submit control.
func SubmitButton() Chain {
	return NewChain("login button",
		Role("button", loginButtonName),
		Attribute(`button[type="submit"]`),
		Type("button").WithText(loginButtonText),
	)
}

// ErrorBanner is the message shown when a login attempt is rejected.
func ErrorBanner() Chain {
	return NewChain("login error message",
		Role("alert", nil),
		Attribute(`[class*="error"]`),
		Attribute(`[class*="alert"]`),
	)
}

// Sidebar is the project navigation panel.
func Sidebar() Chain {
	return NewChain("project sidebar",
		Attribute(`[class*="sidebar"]`),
		Type("aside"),
		Type("nav"),
	)
}

// MainContent is the board area next to the sidebar.
func MainContent() Chain {
	return NewChain("main content",
		Attribute(`[class*="content"]`),
		Attribute(`[class*="board"]`),
		Type("main"),
	)
}

// ColumnHeader is the "<name> (<count>)" header of one column.
func ColumnHeader(name string) Chain {
	return NewChain("column header "+name, Text(ColumnHeaderPattern(name)))
}

// TaskCardContainer walks from a task title up to its card element.
const TaskCardContainer = `xpath=ancestor::div[contains(@class, "bg-white") or contains(@class, "rounded")][1]`

// TagCandidates are the styled spans inside a card that may be tags. Date
// spans are removed by the caller with DatePattern.
func TagCandidates() Chain {
	return NewChain("task tag",
		Attribute(`span[class*="badge"]`),
		Attribute(`span[class*="tag"]`),
		Attribute(`span[class*="bg-"]`),
		Type(`span[class*="rounded"]`),
	)
}

// ProjectHeading is the main heading that names the current project.
const ProjectHeading = `h1[class*="text-xl"]`
