package main

import (
	"github.com/farrow9/user-api/cmd/cli/auth"
	"github.com/farrow9/user-api/cmd/cli/root"
	"github.com/farrow9/user-api/cmd/cli/users"
)

func main() {
	auth.InitAuth(root.GetRoot())
	users.InitUsers(root.GetRoot())
	root.Execute()
}
