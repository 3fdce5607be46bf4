package access

import (
	"net/url"
	"strings"

	"github.com/trezcool/shule/core/account"
)

// Class is the classification of a requested path. Every possible path string
// maps to exactly one Class; ambiguity resolves away from Public.
type Class int

const (
	// Public paths are served with no session at all.
	Public Class = iota
	// AdminScoped, TeacherScoped and StudentScoped paths additionally require
	// the matching role.
	AdminScoped
	TeacherScoped
	StudentScoped
	// Authenticated paths require a session but no particular role.
	Authenticated
)

func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case AdminScoped:
		return "admin-scoped"
	case TeacherScoped:
		return "teacher-scoped"
	case StudentScoped:
		return "student-scoped"
	}
	return "authenticated"
}

const loginPath = "/login"

// publicPaths are served unconditionally: the auth pages and endpoints
// themselves, plus well-known files and static asset roots.
var publicPaths = []string{
	"/login",
	"/register",
	"/api/login",
	"/api/register",
	"/api/logout",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
	"/assets",
	"/images",
	"/fonts",
}

// reserved admin/teacher area prefixes; a single-segment path equal to one of
// these is never student-scoped.
const (
	adminPrefix   = "admin"
	teacherPrefix = "teacher"
)

// Classify maps a path to its Class by structural inspection of its segments.
// Student paths are top-level like /MCA001: exactly one non-empty segment that
// is not a reserved prefix.
func Classify(path string) Class {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return Public
		}
	}

	segments := splitPath(path)
	switch {
	case len(segments) == 0:
		return Authenticated
	case segments[0] == adminPrefix:
		return AdminScoped
	case segments[0] == teacherPrefix:
		return TeacherScoped
	case len(segments) == 1:
		return StudentScoped
	}
	return Authenticated
}

func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// Session is the gate's view of the request's tokens, passed explicitly so the
// decision stays pure. Present is set only for a verified session token; Role
// is the server-readable role tag.
type Session struct {
	Present bool
	Role    account.Role
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide classifies the path and applies the role constraints, in that order.
// Every denial redirects to the login page with the original path+query as the
// return target; the target never varies with which scoped area was attempted,
// so an unauthorized caller cannot enumerate valid admin or teacher paths.
func Decide(path, rawQuery string, sess Session) Decision {
	class := Classify(path)
	if class == Public {
		return Decision{Allow: true}
	}
	if !sess.Present {
		return deny(path, rawQuery)
	}

	switch class {
	case AdminScoped:
		if sess.Role != account.RoleAdmin {
			return deny(path, rawQuery)
		}
	case TeacherScoped:
		if sess.Role != account.RoleTeacher {
			return deny(path, rawQuery)
		}
	case StudentScoped:
		if sess.Role != account.RoleStudent {
			return deny(path, rawQuery)
		}
	}
	return Decision{Allow: true}
}

func deny(path, rawQuery string) Decision {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	v := url.Values{"redirect": {target}}
	return Decision{Redirect: loginPath + "?" + v.Encode()}
}
