// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	EngineNotFoundId Id = iota + 1
	BoxCreateFailedId
	BoxNotFoundId
	ExecFailedId
	PTYNotSupportedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to look the issue up
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# No container engine found!

Boxes run on top of a container engine, but neither Docker nor Podman is
available on this system.

## Supported engines:
- **Docker**
- **Podman** (rootless friendly)

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `

- If the engine is installed, check that its daemon is running:
~~~
$ docker version
~~~

- Configure your preferred engine:
~~~toml
container_engine = "podman"  # or "docker"
~~~`,
	}

	boxCreateFailedIssue = &Issue{
		id: BoxCreateFailedId,
		mdMsg: `
# Failed to create box!

The container engine rejected the box creation request.

## Common causes:
- The image reference does not exist or a pull failed
- A box with the same name is already running
- Resource limits (cpus, memory) exceed what the engine allows

## Things you can try:
- Pull the image manually to see the engine's own error:
~~~
$ docker pull <image>
~~~

- List live boxes and pick a different name:
~~~
$ boxlite info <name>
~~~`,
	}

	boxNotFoundIssue = &Issue{
		id: BoxNotFoundId,
		mdMsg: `
# Box not found!

No live box matches the name you specified.

## Things you can try:
- Check for typos in the box name
- The box may have already stopped; boxes created with auto-remove
  leave no trace once stopped
- Start a fresh box:
~~~
$ boxlite run --name <name> <image> -- <command>
~~~`,
	}

	execFailedIssue = &Issue{
		id: ExecFailedId,
		mdMsg: `
# Command execution failed!

The command could not be started inside the box.

## Common causes:
- The program does not exist in the box's image
- The box stopped between creation and the exec
- The working directory does not exist inside the box

## Things you can try:
- Check the program is present in the image:
~~~
$ boxlite run <image> -- which <program>
~~~

- Use a shell to explore the box interactively:
~~~
$ boxlite shell <image>
~~~`,
	}

	ptyNotSupportedIssue = &Issue{
		id: PTYNotSupportedId,
		mdMsg: `
# Interactive sessions need a PTY!

Interactive sessions allocate a pseudo-terminal, which this platform does
not support.

## Things you can try:
- Run the command non-interactively instead:
~~~
$ boxlite run <image> -- <command>
~~~

- Pipe input explicitly rather than attaching a terminal`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The boxlite configuration file could not be loaded.

## Configuration file locations:
- Linux: ~/.config/boxlite/config.toml
- macOS: ~/Library/Application Support/boxlite/config.toml
- Windows: %APPDATA%\boxlite\config.toml

## Things you can try:
- Check the TOML syntax of the file
- Remove the config file to fall back to defaults:
~~~
$ rm ~/.config/boxlite/config.toml
~~~

## Example configuration:
~~~toml
container_engine = "docker"
default_image = "alpine:latest"

[ui]
color_scheme = "auto"
verbose = false
~~~`,
	}

	issues = map[Id]*Issue{
		engineNotFoundIssue.Id():   engineNotFoundIssue,
		boxCreateFailedIssue.Id():  boxCreateFailedIssue,
		boxNotFoundIssue.Id():      boxNotFoundIssue,
		execFailedIssue.Id():       execFailedIssue,
		ptyNotSupportedIssue.Id():  ptyNotSupportedIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
