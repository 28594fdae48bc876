package navigator

// Role names a selection control on the schedule page
type Role string

const (
	RoleSeason   Role = "season"
	RoleDivision Role = "division"
	RoleTeam     Role = "team"
)

// Roles lists the controls in funnel order
var Roles = []Role{RoleSeason, RoleDivision, RoleTeam}

// Locators maps each role to candidate selectors, tried in order.
type Locators map[Role][]string

// DefaultLocators covers the markup variants the source has shipped so far.
// New variants go at the end of the relevant list.
var DefaultLocators = Locators{
	RoleSeason: {
		`select[name="season"]`,
		`select#season`,
		`select#ddlSeason`,
		`select[id*="season" i]`,
		`select[name*="season" i]`,
		`[data-testid="season-select"] select`,
	},
	RoleDivision: {
		`select[name="division"]`,
		`select#division`,
		`select#ddlDivision`,
		`select[id*="division" i]`,
		`select[name*="division" i]`,
		`[data-testid="division-select"] select`,
	},
	RoleTeam: {
		`select[name="team"]`,
		`select#team`,
		`select#ddlTeam`,
		`select[id*="team" i]`,
		`select[name*="team" i]`,
		`[data-testid="team-select"] select`,
	},
}

// DefaultMountMarkers signal that the client framework has mounted, in order
var DefaultMountMarkers = []string{
	`[data-reactroot]`,
	`#root > *`,
	`#__next > *`,
	`[data-v-app]`,
	`[ng-version]`,
	`#app > *`,
	`select`,
}

// For returns the candidates for role, falling back to the defaults when
// the table has no entry for it.
func (l Locators) For(role Role) []string {
	if c, ok := l[role]; ok && len(c) > 0 {
		return c
	}
	return DefaultLocators[role]
}
