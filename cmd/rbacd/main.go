// @title           RBAC API
// @version         1.0
// @description     Session-token authentication and role-based access control.
// @BasePath        /
//
// @securityDefinitions.apikey  SessionToken
// @in                          header
// @name                        X-Session-Token
package main

import "github.com/tokengate/rbac-api/cmd/rbacd/cmd"

func main() {
	cmd.Execute()
}
