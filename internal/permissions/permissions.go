// Package permissions classifies declared extension permissions into
// risk tiers with human-readable rationale.
package permissions

import (
	"strings"

	"github.com/crxaudit/crxaudit-cli/internal/risk"
)

// Finding is the classification of a single declared permission.
type Finding struct {
	Permission  string    `json:"permission"`
	Risk        risk.Tier `json:"risk"`
	Description string    `json:"description"`
}

type permissionSpec struct {
	Risk        risk.Tier
	Description string
}

// permissionSpecs is the fixed classification table for known permission
// strings. Anything not listed here falls through to the host-pattern
// rule, then to the Low default.
var permissionSpecs = map[string]permissionSpec{
	"<all_urls>":            {risk.Critical, "Can read and change all your data on every website you visit."},
	"debugger":              {risk.Critical, "Can attach the debugger to pages and inspect or modify everything they do."},
	"nativeMessaging":       {risk.Critical, "Can exchange messages with native applications installed on the device."},
	"proxy":                 {risk.Critical, "Can route all browser traffic through an attacker-controlled proxy."},
	"cookies":               {risk.High, "Can read and modify browser cookies, including session tokens."},
	"history":               {risk.High, "Can read and modify the full browsing history."},
	"webRequest":            {risk.High, "Can observe network requests made by the browser."},
	"webRequestBlocking":    {risk.High, "Can intercept and block or rewrite network requests."},
	"management":            {risk.High, "Can manage, disable, and uninstall other installed extensions."},
	"clipboardRead":         {risk.High, "Can read the contents of the system clipboard."},
	"geolocation":           {risk.High, "Can access the device's physical location without a prompt."},
	"privacy":               {risk.High, "Can change privacy-related browser settings."},
	"contentSettings":       {risk.High, "Can change per-site content settings such as script and cookie policies."},
	"scripting":             {risk.High, "Can inject scripts into pages the extension has host access to."},
	"tabs":                  {risk.Medium, "Can see the URL and title of every open tab."},
	"webNavigation":         {risk.Medium, "Can observe page navigations across all tabs."},
	"bookmarks":             {risk.Medium, "Can read and modify bookmarks."},
	"downloads":             {risk.Medium, "Can start downloads and read download history."},
	"browsingData":          {risk.Medium, "Can clear browsing data such as history and cookies."},
	"clipboardWrite":        {risk.Medium, "Can place data on the system clipboard."},
	"identity":              {risk.Medium, "Can request OAuth tokens for the signed-in user."},
	"topSites":              {risk.Medium, "Can read the list of most-visited sites."},
	"declarativeNetRequest": {risk.Medium, "Can block and redirect network requests using declarative rules."},
	"storage":               {risk.Low, "Can store extension data locally."},
	"activeTab":             {risk.Low, "Can access the current tab only after a deliberate user gesture."},
	"notifications":         {risk.Low, "Can show desktop notifications."},
	"contextMenus":          {risk.Low, "Can add items to the browser context menu."},
	"alarms":                {risk.Low, "Can schedule code to run periodically."},
	"idle":                  {risk.Low, "Can detect when the machine goes idle."},
	"unlimitedStorage":      {risk.Low, "Can exceed the usual local storage quota."},
}

// Classify maps the union of permissions and host permissions to one
// finding per distinct string, in first-seen order. It never fails and
// never drops an input.
func Classify(permissions, hostPermissions []string) []Finding {
	findings := make([]Finding, 0, len(permissions)+len(hostPermissions))
	seen := make(map[string]struct{}, len(permissions)+len(hostPermissions))

	for _, p := range append(append([]string{}, permissions...), hostPermissions...) {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		findings = append(findings, classifyOne(p))
	}
	return findings
}

func classifyOne(permission string) Finding {
	if spec, ok := permissionSpecs[permission]; ok {
		return Finding{Permission: permission, Risk: spec.Risk, Description: spec.Description}
	}

	if permission == "<all_urls>" || strings.Contains(permission, "://") {
		tier := risk.High
		if permission == "<all_urls>" {
			tier = risk.Critical
		}
		return Finding{
			Permission:  permission,
			Risk:        tier,
			Description: "Can access data on sites matching " + permission + ".",
		}
	}

	return Finding{
		Permission:  permission,
		Risk:        risk.Low,
		Description: "Standard extension permission.",
	}
}
