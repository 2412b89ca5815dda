// Package cli implements the identity management commands: applying the
// schema, creating roles, users, superusers and groups, and issuing tokens.
package cli

import (
	"bufio"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/netx"
	"github.com/dmitrijs2005/identitystore/internal/server/authz"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrPasswordMatch  = errors.New("passwords do not match")
)

type UserService interface {
	CreateUser(ctx context.Context, email, name, wechat, password string) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, name, wechat, password string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenService interface {
	Issue(ctx context.Context, userID string) (*models.Token, error)
}

type GroupService interface {
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
	AddMember(ctx context.Context, groupName, userID string) (*models.UserGroup, error)
}

type AvatarService interface {
	PresignUpload(ctx context.Context, userID string) (string, string, error)
	SetAvatar(ctx context.Context, userID, key string) error
	AvatarURL(ctx context.Context, u *models.User) (string, error)
}

// readFile and uploadObject are seams for tests.
var (
	readFile     = os.ReadFile
	uploadObject = func(ctx context.Context, url, contentType string, body []byte) error {
		return netx.UploadToPresignedURL(ctx, http.DefaultClient, url, contentType, body)
	}
)

type RoleService interface {
	CreateRole(ctx context.Context, name string) (*models.Role, error)
}

// PermissionLister reports the permissions configured for a role.
type PermissionLister interface {
	PermissionsFor(role string) []string
}

// Commands dispatches positional command lines to the services. Prompts are
// read from in and written to out.
type Commands struct {
	Migrate func(ctx context.Context) error
	Users   UserService
	Tokens  TokenService
	Groups  GroupService
	Roles   RoleService
	Authz   authz.Authorizer
	Perms   PermissionLister
	Avatars AvatarService

	log logging.Logger
	in  *bufio.Reader
	out io.Writer
}

func NewCommands(log logging.Logger, in io.Reader, out io.Writer) *Commands {
	return &Commands{log: log.With("module", "cli"), in: bufio.NewReader(in), out: out}
}

const usage = `Usage: identity <command> [flags]

Commands:
  migrate                     apply the database schema
  create-role <name>          add a role
  create-user                 create an account (interactive)
  create-superuser            create an administrator account (interactive)
  issue-token <email>         issue a bearer token for a user
  create-group <name>         add a group
  add-to-group <email> <name> put a user into a group
  set-avatar <email> <file>   upload an image and make it the user's avatar
  avatar-url <email>          print a download URL for the user's avatar
  has-perm <email> <perm>     check a permission ("users.view_user") or a module ("users")
  role-perms <role>           list the permissions configured for a role
  help                        show this text`

// arity maps the commands that reach the database to their argument count;
// -1 accepts any.
var arity = map[string]int{
	"migrate":          -1,
	"create-role":      1,
	"create-user":      -1,
	"create-superuser": -1,
	"issue-token":      1,
	"create-group":     1,
	"add-to-group":     2,
	"set-avatar":       2,
	"avatar-url":       1,
	"has-perm":         2,
}

// NeedsStore reports whether Run would touch the database for args. Help,
// role-perms, unknown commands and wrong argument counts do not.
func NeedsStore(args []string) bool {
	if len(args) == 0 {
		return false
	}
	n, ok := arity[args[0]]
	return ok && (n < 0 || n == len(args)-1)
}

// Run executes the command named by args[0].
func (c *Commands) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(c.out, usage)
		return nil
	case "migrate":
		return c.migrate(ctx)
	case "create-role":
		return c.createRole(ctx, rest)
	case "create-user":
		return c.createUser(ctx, false)
	case "create-superuser":
		return c.createUser(ctx, true)
	case "issue-token":
		return c.issueToken(ctx, rest)
	case "create-group":
		return c.createGroup(ctx, rest)
	case "add-to-group":
		return c.addToGroup(ctx, rest)
	case "set-avatar":
		return c.setAvatar(ctx, rest)
	case "avatar-url":
		return c.avatarURL(ctx, rest)
	case "has-perm":
		return c.hasPerm(ctx, rest)
	case "role-perms":
		return c.rolePerms(rest)
	default:
		fmt.Fprintln(c.out, usage)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (c *Commands) migrate(ctx context.Context) error {
	if err := c.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(c.out, "Migrations applied.")
	return nil
}

func (c *Commands) createRole(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: create-role <name>", ErrUsage)
	}
	r, err := c.Roles.CreateRole(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Role %q created (id %d).\n", r.Name, r.ID)
	return nil
}

// readNewPassword asks for the password twice.
func (c *Commands) readNewPassword() (string, error) {
	first, err := GetPassword("Password", c.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := GetPassword("Password (again)", c.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if len(first) == 0 {
		return "", fmt.Errorf("%w: password must not be blank", common.ErrorValidation)
	}
	if subtle.ConstantTimeCompare(first, second) != 1 {
		return "", ErrPasswordMatch
	}
	return string(first), nil
}

func (c *Commands) createUser(ctx context.Context, superuser bool) error {
	email, err := GetSimpleText(c.in, "Email address", c.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(c.in, "Name", c.out)
	if err != nil {
		return err
	}
	wechat, err := GetSimpleText(c.in, "WeChat (optional)", c.out)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	password, err := c.readNewPassword()
	if err != nil {
		return err
	}

	create := c.Users.CreateUser
	kind := "User"
	if superuser {
		create = c.Users.CreateSuperuser
		kind = "Superuser"
	}

	u, err := create(ctx, email, name, wechat, password)
	if err != nil {
		return err
	}

	c.log.Info(ctx, "account created from cli", "user_id", u.ID, "superuser", u.IsSuperuser)
	fmt.Fprintf(c.out, "%s created successfully: %s\n", kind, u)
	return nil
}

func (c *Commands) issueToken(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: issue-token <email>", ErrUsage)
	}
	u, err := c.Users.GetByEmail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}
	t, err := c.Tokens.Issue(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\nexpires %s\n", t.Token, t.ExpiresAt().UTC().Format("2006-01-02 15:04:05 MST"))
	return nil
}

func (c *Commands) createGroup(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: create-group <name>", ErrUsage)
	}
	g, err := c.Groups.CreateGroup(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Group %q created.\n", g.Name)
	return nil
}

func (c *Commands) addToGroup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: add-to-group <email> <group>", ErrUsage)
	}
	u, err := c.Users.GetByEmail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}
	if _, err := c.Groups.AddMember(ctx, args[1], u.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s added to %s.\n", u.Email, strings.TrimSpace(args[1]))
	return nil
}

func (c *Commands) hasPerm(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: has-perm <email> <perm>", ErrUsage)
	}
	u, err := c.Users.GetByEmail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}

	var ok bool
	if strings.Contains(args[1], ".") {
		ok, err = c.Authz.HasPerm(ctx, u, args[1])
	} else {
		ok, err = c.Authz.HasModulePerms(ctx, u, args[1])
	}
	if err != nil {
		return err
	}

	if ok {
		fmt.Fprintf(c.out, "%s has %s\n", u.Email, args[1])
	} else {
		fmt.Fprintf(c.out, "%s does not have %s\n", u.Email, args[1])
	}
	return nil
}

func (c *Commands) rolePerms(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: role-perms <role>", ErrUsage)
	}

	switch role := args[0]; role {
	case models.RoleAdmin:
		fmt.Fprintf(c.out, "%s holds every permission\n", role)
	case models.RoleUnVerified:
		fmt.Fprintf(c.out, "%s holds no permissions\n", role)
	default:
		perms := c.Perms.PermissionsFor(role)
		if len(perms) == 0 {
			fmt.Fprintf(c.out, "%s holds no permissions\n", role)
			return nil
		}
		for _, p := range perms {
			fmt.Fprintln(c.out, p)
		}
	}
	return nil
}

func (c *Commands) setAvatar(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: set-avatar <email> <file>", ErrUsage)
	}
	u, err := c.Users.GetByEmail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}

	body, err := readFile(args[1])
	if err != nil {
		return err
	}

	key, url, err := c.Avatars.PresignUpload(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("error presigning upload: %w", err)
	}
	if err := uploadObject(ctx, url, netx.ImageContentType(args[1]), body); err != nil {
		return err
	}
	if err := c.Avatars.SetAvatar(ctx, u.ID, key); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Avatar of %s set to %s.\n", u.Email, key)
	return nil
}

func (c *Commands) avatarURL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: avatar-url <email>", ErrUsage)
	}
	u, err := c.Users.GetByEmail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}
	url, err := c.Avatars.AvatarURL(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, url)
	return nil
}
