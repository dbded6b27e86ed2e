package models

import "otpviewer.org/internal/buildinfo"

type BuildProperties struct {
	Branch       string `json:"git.branch"`
	BuildTime    string `json:"git.build.time"`
	BuildVersion string `json:"git.build.version"`
	CommitID     string `json:"git.commit.id"`
	CommitAbbrev string `json:"git.commit.id.abbrev"`
	Dirty        string `json:"git.dirty"`
}

// ConfigModel describes this deployment of the viewer gateway.
type ConfigModel struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	BuildProperties BuildProperties `json:"gitProperties"`
	HomeTimezone    string          `json:"homeTimezone"`
	ServiceDateFrom string          `json:"serviceDateFrom"`
	ServiceDateTo   string          `json:"serviceDateTo"`
}

func CurrentBuildProperties() BuildProperties {
	return BuildProperties{
		Branch:       buildinfo.Branch,
		BuildTime:    buildinfo.BuildTime,
		BuildVersion: buildinfo.Version,
		CommitID:     buildinfo.CommitHash,
		CommitAbbrev: buildinfo.ShortCommit(),
		Dirty:        buildinfo.Dirty,
	}
}
