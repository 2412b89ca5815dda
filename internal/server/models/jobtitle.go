package models

// JobTitle is the user's occupation. Zero means not set.
type JobTitle int16

const (
	JobTitleUnset                 JobTitle = 0
	JobTitleDatabaseAdministrator JobTitle = 1
	JobTitleSystemAdministrator   JobTitle = 2
	JobTitleNetworkAdministrator  JobTitle = 3
	JobTitleHelpDesk              JobTitle = 4
	JobTitleDeveloper             JobTitle = 5
	JobTitleTester                JobTitle = 6

	JobTitleDirector   JobTitle = 101
	JobTitleManager    JobTitle = 102
	JobTitleTechLeader JobTitle = 103
)

var jobTitleNames = map[JobTitle]string{
	JobTitleDatabaseAdministrator: "Database Administrator",
	JobTitleSystemAdministrator:   "System Administrator",
	JobTitleNetworkAdministrator:  "Network Administrator",
	JobTitleHelpDesk:              "Help Desk/IT",
	JobTitleDeveloper:             "Developer",
	JobTitleTester:                "Tester",
	JobTitleDirector:              "Director",
	JobTitleManager:               "Manager",
	JobTitleTechLeader:            "Tech Leader",
}

// Valid reports whether j is unset or one of the known titles.
func (j JobTitle) Valid() bool {
	if j == JobTitleUnset {
		return true
	}
	_, ok := jobTitleNames[j]
	return ok
}

func (j JobTitle) String() string {
	if name, ok := jobTitleNames[j]; ok {
		return name
	}
	return ""
}
