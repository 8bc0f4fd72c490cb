package handlers

import (
	"context"
	"fmt"
	"strings"

	"ecessbot/clients"
	"ecessbot/config"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/metrics"
	"ecessbot/middleware"
	"ecessbot/models"
	"ecessbot/utils"
)

const (
	genericFailureMessage = "Something went wrong while running that command. The error was logged."
	maxEmbedsPerMessage   = 10
)

type access int

const (
	accessMember access = iota
	// accessModerator is a bot owner or a member with Ban Members in the channel
	accessModerator
	accessOwner
)

type commandFunc func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error)

type command struct {
	name      string
	usage     string
	access    access
	minArgs   int
	guildOnly bool
	run       commandFunc
}

type commandGroup struct {
	name        string
	usage       string
	subcommands map[string]*command
}

// CommandsHandler routes prefixed chat messages to the use cases
type CommandsHandler struct {
	discordClient   clients.DiscordClient
	alertMiddleware *middleware.ErrorAlertMiddleware
	discordConfig   config.DiscordConfig

	commands map[string]*command
	groups   map[string]*commandGroup
}

func NewCommandsHandler(
	discordClient clients.DiscordClient,
	alertMiddleware *middleware.ErrorAlertMiddleware,
	discordConfig config.DiscordConfig,
	roleMapping RoleMappingUseCase,
	pins PinsUseCase,
	courses CoursesUseCase,
) *CommandsHandler {
	h := &CommandsHandler{
		discordClient:   discordClient,
		alertMiddleware: alertMiddleware,
		discordConfig:   discordConfig,
		commands:        make(map[string]*command),
		groups:          make(map[string]*commandGroup),
	}
	h.registerRoleMappingCommands(roleMapping)
	h.registerPinCommands(pins)
	h.registerCourseCommands(courses)
	h.addCommand([]string{"ping"}, &command{
		name:  "ping",
		usage: "ping",
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return models.NewCommandResult("Pong!"), nil
		},
	})
	return h
}

func (h *CommandsHandler) registerRoleMappingCommands(roleMapping RoleMappingUseCase) {
	begin := &command{
		name: "initialize_role_mapping", usage: "initialize_role_mapping <message> [unique]",
		access: accessOwner, minArgs: 1, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			channelID, messageID, err := parseMessageRef(args[0], inv.ChannelID)
			if err != nil {
				return nil, err
			}
			return roleMapping.BeginSession(ctx, inv, channelID, messageID, parseUniqueFlag(args[1:]))
		},
	}
	add := &command{
		name: "add_role_mapping", usage: "add_role_mapping <emote> <role>",
		access: accessOwner, minArgs: 2, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			emote, err := parseEmote(args[0])
			if err != nil {
				return nil, err
			}
			roleID, err := parseRole(args[1])
			if err != nil {
				return nil, err
			}
			return roleMapping.AddEntry(ctx, inv, emote, roleID)
		},
	}
	finish := &command{
		name: "finalize_role_mapping", usage: "finalize_role_mapping",
		access: accessOwner, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return roleMapping.CommitSession(ctx, inv)
		},
	}
	abort := &command{
		name: "abort_role_mapping", usage: "abort_role_mapping",
		access: accessOwner, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return roleMapping.AbortSession(ctx, inv)
		},
	}
	list := &command{
		name: "list_role_mappings", usage: "list_role_mappings",
		access: accessOwner, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return roleMapping.ListMappings(ctx, inv)
		},
	}
	remove := &command{
		name: "delete_role_mapping", usage: "delete_role_mapping <message>",
		access: accessOwner, minArgs: 1, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			channelID, messageID, err := parseMessageRef(args[0], inv.ChannelID)
			if err != nil {
				return nil, err
			}
			return roleMapping.DeleteMapping(ctx, inv, channelID, messageID)
		},
	}

	for _, cmd := range []*command{begin, add, finish, abort, list, remove} {
		h.addCommand([]string{cmd.name}, cmd)
	}
	h.addGroup([]string{"rm"}, "rm begin|add|finish|abort|list|delete", map[string]*command{
		"begin":  begin,
		"add":    add,
		"finish": finish,
		"abort":  abort,
		"list":   list,
		"delete": remove,
	})
}

func (h *CommandsHandler) registerPinCommands(pins PinsUseCase) {
	pin := &command{
		name: "threads pin", usage: "threads pin <thread>",
		access: accessModerator, minArgs: 1, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			threadID, err := parseChannel(args[0])
			if err != nil {
				return nil, err
			}
			return pins.Pin(ctx, inv, threadID)
		},
	}
	unpin := &command{
		name: "threads unpin", usage: "threads unpin <thread>",
		access: accessModerator, minArgs: 1, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			threadID, err := parseChannel(args[0])
			if err != nil {
				return nil, err
			}
			return pins.Unpin(ctx, inv, threadID)
		},
	}
	list := &command{
		name: "threads list", usage: "threads list",
		access: accessModerator, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return pins.List(ctx, inv)
		},
	}

	h.addGroup([]string{"threads", "t"}, "threads pin|unpin|list", map[string]*command{
		"pin": pin, "p": pin,
		"unpin": unpin, "u": unpin,
		"list": list, "l": list,
	})
}

func (h *CommandsHandler) registerCourseCommands(courses CoursesUseCase) {
	register := &command{
		name: "course_threads register", usage: "course_threads register <year level> <channel>",
		access: accessModerator, minArgs: 2, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			channelID, err := parseChannel(args[1])
			if err != nil {
				return nil, err
			}
			return courses.RegisterBase(ctx, inv, args[0], channelID)
		},
	}
	create := &command{
		name: "course_threads create", usage: "course_threads create <course>",
		access: accessModerator, minArgs: 1, guildOnly: true,
		run: withCourse(courses.CreateThread),
	}
	remove := &command{
		name: "course_threads delete", usage: "course_threads delete <course>",
		access: accessModerator, minArgs: 1, guildOnly: true,
		run: withCourse(courses.DeleteThread),
	}
	importSchedule := &command{
		name: "course_threads import", usage: "course_threads import <max courses> (attach a .ics calendar export)",
		access: accessModerator, minArgs: 1, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			maxCourses, err := parseCount(args[0])
			if err != nil {
				return nil, err
			}
			return courses.ImportFromSchedule(ctx, inv, maxCourses)
		},
	}
	h.addGroup([]string{"course_threads", "ct"}, "course_threads register|create|delete|import", map[string]*command{
		"register_base_channel": register, "register": register, "reg": register,
		"create_new_thread": create, "create": create, "new": create,
		"delete_thread": remove, "delete": remove, "del": remove,
		"import": importSchedule,
	})

	join := &command{
		name: "courses join", usage: "courses join <course>",
		minArgs: 1, guildOnly: true,
		run: withCourse(courses.Join),
	}
	leave := &command{
		name: "courses leave", usage: "courses leave <course>",
		minArgs: 1, guildOnly: true,
		run: withCourse(courses.Leave),
	}
	list := &command{
		name: "courses list", usage: "courses list",
		guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return courses.List(ctx, inv)
		},
	}
	search := &command{
		name: "courses search", usage: "courses search <query>",
		minArgs: 1, guildOnly: true,
		run: func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
			return courses.Search(ctx, inv, strings.Join(args, " "))
		},
	}
	info := &command{
		name: "courses info", usage: "courses info <course>",
		minArgs: 1, guildOnly: true,
		run: withCourse(courses.Info),
	}
	h.addGroup([]string{"courses", "course", "c"}, "courses join|leave|list|search|info", map[string]*command{
		"join":  join,
		"leave": leave,
		"list":  list, "l": list,
		"search": search, "s": search,
		"info": info, "i": info,
	})
}

func withCourse(
	fn func(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error),
) commandFunc {
	return func(ctx context.Context, inv models.Invocation, args []string) (*models.CommandResult, error) {
		course, err := parseCourse(args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, inv, course)
	}
}

func (h *CommandsHandler) addCommand(names []string, cmd *command) {
	for _, name := range names {
		utils.AssertInvariant(h.commands[name] == nil && h.groups[name] == nil, "duplicate command "+name)
		h.commands[name] = cmd
	}
}

func (h *CommandsHandler) addGroup(names []string, usage string, subcommands map[string]*command) {
	group := &commandGroup{name: names[0], usage: usage, subcommands: subcommands}
	for _, name := range names {
		utils.AssertInvariant(h.commands[name] == nil && h.groups[name] == nil, "duplicate command "+name)
		h.groups[name] = group
	}
}

// HandleMessage runs the command in msg, if any, and replies with its result
func (h *CommandsHandler) HandleMessage(ctx context.Context, msg models.IncomingMessage) error {
	if msg.AuthorIsBot || !strings.HasPrefix(msg.Content, h.discordConfig.CommandPrefix) {
		return nil
	}
	fields := strings.Fields(strings.TrimPrefix(msg.Content, h.discordConfig.CommandPrefix))
	if len(fields) == 0 {
		return nil
	}

	cmd, args, found, usageErr := h.resolve(fields)
	if !found {
		return nil
	}

	inv := models.Invocation{
		GuildID:     msg.GuildID,
		ChannelID:   msg.ChannelID,
		MessageID:   msg.ID,
		UserID:      msg.AuthorID,
		Attachments: msg.Attachments,
	}

	commandName := fields[0]
	var result *models.CommandResult
	var err error
	if usageErr != nil {
		err = usageErr
	} else {
		commandName = cmd.name
		log.Info("📋 Starting to run command", "command", cmd.name, "user_id", inv.UserID, "guild_id", inv.GuildID)
		err = h.alertMiddleware.RunCommand(cmd.name, isUserError, func() error {
			var runErr error
			result, runErr = h.execute(ctx, cmd, inv, args)
			return runErr
		})
	}

	if err != nil {
		userMessage, ok := core.UserMessage(err)
		if ok {
			metrics.Commands.WithLabelValues(commandName, "rejected").Inc()
			result = models.NewCommandResult(userMessage)
		} else {
			metrics.Commands.WithLabelValues(commandName, "failed").Inc()
			result = models.NewCommandResult(genericFailureMessage)
		}
	} else {
		metrics.Commands.WithLabelValues(commandName, "ok").Inc()
		log.Info("✅ Command completed", "command", commandName, "user_id", inv.UserID)
	}

	return h.reply(ctx, msg, result)
}

// resolve finds the command named by fields. A known group with a missing or unknown
// subcommand resolves to a usage error.
func (h *CommandsHandler) resolve(fields []string) (*command, []string, bool, error) {
	name := strings.ToLower(fields[0])
	if cmd, ok := h.commands[name]; ok {
		return cmd, fields[1:], true, nil
	}
	group, ok := h.groups[name]
	if !ok {
		return nil, nil, false, nil
	}
	if len(fields) < 2 {
		return nil, nil, true, h.usageError(group.usage)
	}
	cmd, ok := group.subcommands[strings.ToLower(fields[1])]
	if !ok {
		return nil, nil, true, h.usageError(group.usage)
	}
	return cmd, fields[2:], true, nil
}

func (h *CommandsHandler) execute(
	ctx context.Context,
	cmd *command,
	inv models.Invocation,
	args []string,
) (*models.CommandResult, error) {
	if cmd.guildOnly && inv.GuildID == "" {
		return nil, core.NewValidationError("This command can only be used in a server.")
	}
	if err := h.authorize(ctx, cmd.access, inv); err != nil {
		return nil, err
	}
	if len(args) < cmd.minArgs {
		return nil, h.usageError(cmd.usage)
	}
	return cmd.run(ctx, inv, args)
}

func (h *CommandsHandler) authorize(ctx context.Context, level access, inv models.Invocation) error {
	if level == accessMember || h.discordConfig.IsOwner(inv.UserID) {
		return nil
	}
	if level == accessModerator {
		canBan, err := h.discordClient.HasBanMembers(ctx, inv.ChannelID, inv.UserID)
		if err != nil {
			return fmt.Errorf("failed to check permissions: %w", err)
		}
		if canBan {
			return nil
		}
	}
	return core.NewValidationError("You don't have permission to use this command.")
}

func (h *CommandsHandler) usageError(usage string) error {
	return core.NewValidationError("Usage: `%s%s`", h.discordConfig.CommandPrefix, usage)
}

func (h *CommandsHandler) reply(ctx context.Context, msg models.IncomingMessage, result *models.CommandResult) error {
	if result == nil {
		return nil
	}

	content := result.Message
	for _, warning := range result.Warnings {
		content = strings.TrimSpace(content + "\n⚠️ " + warning)
	}
	embeds := result.Embeds
	if result.Listing != nil {
		embeds = append(embeds, utils.Paginate(*result.Listing)...)
	}
	if content == "" && len(embeds) == 0 {
		return nil
	}

	outgoing := models.OutgoingMessage{Content: content, ReplyTo: msg.ID}
	for {
		if len(embeds) > 0 {
			batch := min(len(embeds), maxEmbedsPerMessage)
			outgoing.Embeds = embeds[:batch]
			embeds = embeds[batch:]
		}
		if _, err := h.discordClient.SendMessage(ctx, msg.ChannelID, outgoing); err != nil {
			return fmt.Errorf("failed to send command reply: %w", err)
		}
		if len(embeds) == 0 {
			return nil
		}
		outgoing = models.OutgoingMessage{}
	}
}

func isUserError(err error) bool {
	_, ok := core.UserMessage(err)
	return ok
}
