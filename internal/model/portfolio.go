package model

import "time"

// Portfolio is the enriched profile document returned by the
// /api/github/enriched endpoint. It is derived per request from GitHub and
// the LLM normalizer and is never persisted.
type Portfolio struct {
	BasicInfo BasicInfo `json:"basicInfo"`
	About     string    `json:"about"`
	Skills    []string  `json:"skills"`
	Projects  []Project `json:"projects"`
}

// BasicInfo is the identity block at the top of a portfolio.
type BasicInfo struct {
	FullName     string      `json:"fullName"`
	Headline     string      `json:"headline"`
	Location     string      `json:"location"`
	ProfileImage string      `json:"profileImage"`
	Social       SocialLinks `json:"social"`
	Followers    int         `json:"followers"`
	Following    int         `json:"following"`
	PublicRepos  int         `json:"publicRepos"`
}

// SocialLinks holds the profile's outbound links. Absent links are nil so
// the JSON carries an explicit null, matching what the front end expects.
type SocialLinks struct {
	GitHub    string  `json:"github"`
	LinkedIn  *string `json:"linkedin"`
	Twitter   *string `json:"twitter"`
	Portfolio *string `json:"portfolio"`
}

// Project is one repository in the portfolio's project list.
//
// Invariant: only public repositories make it into Portfolio.Projects, and
// the list is ordered by stars descending, then most recently updated.
type Project struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RepoURL     string    `json:"repo"`
	LiveURL     *string   `json:"live"`
	Tech        []string  `json:"tech"`
	Features    []string  `json:"features"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
