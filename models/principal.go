package models

// Table именует таблицы, к которым применяется фильтр области видимости.
type Table string

const (
	TableProfiles  Table = "profiles"
	TablePlayers   Table = "players"
	TableSessions  Table = "sessions"
	TableDebugLogs Table = "debug_logs"
)

// Principal - аутентифицированный пользователь, от имени которого выполняется запрос.
type Principal struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Scope returns the row filter for players and sessions.
// Admins see everything; everyone else sees rows where user_email matches.
func (p Principal) Scope() Scope {
	if p.IsAdmin {
		return UnrestrictedScope()
	}
	return OwnerScope(p.Email)
}

// CanRead reports whether the principal may query the table at all.
// Row-level filtering for players and sessions is still applied through Scope.
func (p Principal) CanRead(table Table) bool {
	switch table {
	case TablePlayers, TableSessions:
		return p.Email != "" || p.IsAdmin
	case TableDebugLogs, TableProfiles:
		return p.IsAdmin
	default:
		return false
	}
}

// CanWrite reports whether the principal may insert into or mutate rows of the table.
// Debug logs are append-only for every authenticated principal.
func (p Principal) CanWrite(table Table) bool {
	switch table {
	case TablePlayers, TableSessions, TableDebugLogs:
		return p.Email != "" || p.IsAdmin
	default:
		return false
	}
}

// Scope is the owner-email predicate conjoined to every players/sessions query.
type Scope struct {
	unrestricted bool
	ownerEmail   string
}

func UnrestrictedScope() Scope {
	return Scope{unrestricted: true}
}

// OwnerScope restricts rows to the given owner. An empty email matches nothing.
func OwnerScope(email string) Scope {
	return Scope{ownerEmail: email}
}

func (s Scope) Unrestricted() bool {
	return s.unrestricted
}

// OwnerEmail returns the owner filter and true when the scope is restricted.
func (s Scope) OwnerEmail() (string, bool) {
	if s.unrestricted {
		return "", false
	}
	return s.ownerEmail, true
}

// DeniesAll is true for a restricted scope without an owner.
func (s Scope) DeniesAll() bool {
	return !s.unrestricted && s.ownerEmail == ""
}

// Allows decides single-row access for a row owned by ownerEmail.
func (s Scope) Allows(ownerEmail string) bool {
	if s.unrestricted {
		return true
	}
	if s.ownerEmail == "" {
		return false
	}
	return ownerEmail == s.ownerEmail
}
