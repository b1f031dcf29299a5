package model

import "slices"

const OpenRPCVersion = "1.2.1"

type Document struct {
	OpenRPC string
	Info    Info
	Methods []*Method
}

type Info struct {
	Version string
	Title   string
}

type Method struct {
	Name         string // "<handler>.<method>"
	Description  string
	AuthTypes    []AuthType
	RequiresPerm string
	Params       []*Param
	Result       Result
}

// Result describes a method response. Exactly one of Schema and Enum is
// normally set; an untyped ("any") result carries neither.
type Result struct {
	Name    string
	Comment string
	Schema  *Schema
	Enum    []string
}

const (
	ResultNameEnum = "Response (one of following values)"
)

// ResultName returns the display name for a typed response.
func ResultName(types TypeSet) string {
	return "Response (" + types.String() + ")"
}

type AuthType string

const (
	AuthAdmin      AuthType = "ADMIN"
	AuthNormalUser AuthType = "NORMAL_USER"
	AuthVoIPUser   AuthType = "VOIP_USER"
	AuthAnonymous  AuthType = "ANONYMOUS"
)

var AuthTypes = []AuthType{AuthAdmin, AuthNormalUser, AuthVoIPUser, AuthAnonymous}

// DefaultAuthTypes is used when a method declares auth_type="". Anonymous
// access must always be requested explicitly.
func DefaultAuthTypes() []AuthType {
	return []AuthType{AuthAdmin, AuthNormalUser, AuthVoIPUser}
}

func (a AuthType) Valid() bool {
	return slices.Contains(AuthTypes, a)
}
