package pages

import (
	"fmt"
	"regexp"

	"github.com/gotrs-io/kanban-e2e/internal/locator"
	"github.com/playwright-community/playwright-go"
)

var loginRoute = regexp.MustCompile(`(?i)login`)

// LoginPage drives the authentication form.
type LoginPage struct {
	Base
}

// NewLoginPage returns the login page object for page.
func NewLoginPage(page playwright.Page, opts Options) *LoginPage {
	return &LoginPage{Base: newBase(page, "/", opts)}
}

func (p *LoginPage) usernameInput() playwright.Locator {
	return locator.UsernameField().Resolve(p.root())
}

func (p *LoginPage) passwordInput() playwright.Locator {
	return locator.PasswordField().Resolve(p.root())
}

func (p *LoginPage) submitButton() playwright.Locator {
	return locator.SubmitButton().Resolve(p.root())
}

func (p *LoginPage) errorMessage() playwright.Locator {
	return locator.ErrorBanner().Resolve(p.root())
}

// Login fills in the credentials, submits the form and waits for the
// resulting navigation.
func (p *LoginPage) Login(username, password string) error {
	if err := p.fillInput(p.usernameInput(), username, "username input"); err != nil {
		return err
	}
	if err := p.fillInput(p.passwordInput(), password, "password input"); err != nil {
		return err
	}
	if err := p.clickElement(p.submitButton(), "login button"); err != nil {
		return err
	}
	return p.WaitForPageLoad()
}

// VerifyLoginSuccessful requires both that the location has left the login
// route and that the submit control has gone; either alone could be a
// half-rendered page.
func (p *LoginPage) VerifyLoginSuccessful() error {
	err := p.expect.Page(p.page).Not().ToHaveURL(loginRoute, playwright.PageAssertionsToHaveURLOptions{
		Timeout: millis(LongWait),
	})
	if err != nil {
		return &AssertionError{
			Subject:  "login should navigate away from the login page",
			Expected: fmt.Sprintf("URL not matching /%s/", loginRoute),
			Actual:   p.page.URL(),
			Err:      err,
		}
	}
	err = p.expect.Locator(p.submitButton()).ToBeHidden(playwright.LocatorAssertionsToBeHiddenOptions{
		Timeout: millis(ShortWait),
	})
	if err != nil {
		return &AssertionError{
			Subject:  "login form should no longer be shown",
			Expected: "login button hidden",
			Actual:   "login button visible",
			Err:      err,
		}
	}
	return nil
}

// VerifyLoginError requires the error banner to contain expectedMessage.
func (p *LoginPage) VerifyLoginError(expectedMessage string) error {
	return p.assertContainsText(p.errorMessage(), expectedMessage, "login error message")
}

// IsSubmitVisible reports whether the login button is currently shown. It is
// a soft probe: lookup errors count as not visible.
func (p *LoginPage) IsSubmitVisible() bool {
	ok, err := p.submitButton().First().IsVisible()
	return err == nil && ok
}

// HasError reports whether an error banner is currently shown. Like
// IsSubmitVisible it never fails.
func (p *LoginPage) HasError() bool {
	ok, err := p.errorMessage().First().IsVisible()
	return err == nil && ok
}

// VerifyRejected passes if the login attempt visibly did not succeed: the
// form is still there or an error is shown.
func (p *LoginPage) VerifyRejected() error {
	stillOnLogin := p.IsSubmitVisible()
	hasError := p.HasError()
	if !stillOnLogin && !hasError {
		return &AssertionError{
			Subject:  "invalid login should show an error or keep the user on the login page",
			Expected: "login button visible or error shown",
			Actual:   fmt.Sprintf("neither (url %s)", p.page.URL()),
		}
	}
	return nil
}

// VerifyStillOnLogin requires the submit control to remain visible.
func (p *LoginPage) VerifyStillOnLogin() error {
	if err := p.waitVisible(p.submitButton(), "login button", "leaving the login page", ShortWait); err != nil {
		return &AssertionError{
			Subject:  "should remain on the login page",
			Expected: "login button visible",
			Actual:   p.page.URL(),
			Err:      err,
		}
	}
	return nil
}
