package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"

	"ecessbot/clients"
	"ecessbot/clients/discord"
	"ecessbot/core/log"
	"ecessbot/middleware"
	"ecessbot/models"
	"ecessbot/services"
)

// Intents covers every gateway event the bot consumes
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// DiscordEventsHandler turns gateway events into use case calls. Commands, reactions and
// thread repairs run on a bounded worker pool; prompt answers are delivered inline so a
// command waiting on a confirmation never holds up its own answer.
type DiscordEventsHandler struct {
	discordClient   clients.DiscordClient
	alertMiddleware *middleware.ErrorAlertMiddleware
	promptsService  services.PromptsService
	commandsHandler *CommandsHandler
	reactionRoles   ReactionRolesUseCase
	reconcilers     []ThreadReconciler
	workerPool      *workerpool.WorkerPool
}

func NewDiscordEventsHandler(
	discordClient clients.DiscordClient,
	alertMiddleware *middleware.ErrorAlertMiddleware,
	promptsService services.PromptsService,
	commandsHandler *CommandsHandler,
	reactionRoles ReactionRolesUseCase,
	workers int,
	reconcilers ...ThreadReconciler,
) *DiscordEventsHandler {
	return &DiscordEventsHandler{
		discordClient:   discordClient,
		alertMiddleware: alertMiddleware,
		promptsService:  promptsService,
		commandsHandler: commandsHandler,
		reactionRoles:   reactionRoles,
		reconcilers:     reconcilers,
		workerPool:      workerpool.New(workers),
	}
}

// Register installs the event handlers and intents on session. Call before opening it.
func (h *DiscordEventsHandler) Register(session *discordgo.Session) {
	session.AddHandler(h.handleMessageCreatedEvent)
	session.AddHandler(h.handleReactionAddedEvent)
	session.AddHandler(h.handleReactionRemovedEvent)
	session.AddHandler(h.handleInteractionCreatedEvent)
	session.AddHandler(h.handleThreadUpdatedEvent)
	session.Identify.Intents = Intents
}

// Stop waits for queued events to finish
func (h *DiscordEventsHandler) Stop() {
	h.workerPool.StopWait()
}

func (h *DiscordEventsHandler) handleMessageCreatedEvent(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	msg := mapToIncomingMessage(m)
	if h.promptsService.HandleMessage(msg) {
		return
	}
	if msg.AuthorIsBot {
		return
	}

	h.workerPool.Submit(h.alertMiddleware.WrapEventHandler("message_create", func() error {
		return h.commandsHandler.HandleMessage(context.Background(), msg)
	}))
}

func (h *DiscordEventsHandler) handleReactionAddedEvent(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || r.GuildID == "" {
		return
	}
	event := mapToReactionEvent(r.MessageReaction)
	log.Debug("Reaction added", "message_id", event.MessageID, "user_id", event.UserID, "emote", event.Emote.Key())

	h.workerPool.Submit(h.alertMiddleware.WrapEventHandler("reaction_add", func() error {
		return h.reactionRoles.ProcessReactionAdded(context.Background(), event)
	}))
}

func (h *DiscordEventsHandler) handleReactionRemovedEvent(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil || r.GuildID == "" {
		return
	}
	event := mapToReactionEvent(r.MessageReaction)
	log.Debug("Reaction removed", "message_id", event.MessageID, "user_id", event.UserID, "emote", event.Emote.Key())

	h.workerPool.Submit(h.alertMiddleware.WrapEventHandler("reaction_remove", func() error {
		return h.reactionRoles.ProcessReactionRemoved(context.Background(), event)
	}))
}

func (h *DiscordEventsHandler) handleInteractionCreatedEvent(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	interaction := mapToComponentInteraction(i.Interaction)

	h.alertMiddleware.WrapEventHandler("interaction_create", func() error {
		consumed := h.promptsService.HandleComponent(interaction)
		log.Debug("Button pressed", "custom_id", interaction.CustomID, "user_id", interaction.UserID, "consumed", consumed)
		return h.discordClient.AcknowledgeComponent(context.Background(), i.ID, i.Token)
	})()
}

func (h *DiscordEventsHandler) handleThreadUpdatedEvent(_ *discordgo.Session, t *discordgo.ThreadUpdate) {
	if t.Channel == nil || t.ThreadMetadata == nil || !t.ThreadMetadata.Archived {
		return
	}
	event := models.ThreadArchivedEvent{ThreadID: t.ID, GuildID: t.GuildID}

	h.workerPool.Submit(h.alertMiddleware.WrapEventHandler("thread_update", func() error {
		return h.repairArchivedThread(context.Background(), event)
	}))
}

// repairArchivedThread hands an archived thread to every reconciler that tracks it
func (h *DiscordEventsHandler) repairArchivedThread(ctx context.Context, event models.ThreadArchivedEvent) error {
	for _, reconciler := range h.reconcilers {
		tracked, err := reconciler.Tracks(ctx, event.ThreadID)
		if err != nil {
			return err
		}
		if !tracked {
			continue
		}
		log.Info("🔄 Tracked thread was archived, repairing now", "domain", reconciler.Domain(), "thread_id", event.ThreadID)
		if err := reconciler.ReconcileThread(ctx, event.ThreadID); err != nil {
			return err
		}
	}
	return nil
}

func mapToIncomingMessage(m *discordgo.MessageCreate) models.IncomingMessage {
	msg := models.IncomingMessage{
		ID:          m.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		AuthorID:    m.Author.ID,
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	}
	for _, attachment := range m.Attachments {
		msg.Attachments = append(msg.Attachments, discord.ToAttachment(attachment))
	}
	return msg
}

func mapToReactionEvent(r *discordgo.MessageReaction) models.ReactionEvent {
	return models.ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emote:     discord.ToEmote(r.Emoji),
	}
}

func mapToComponentInteraction(i *discordgo.Interaction) models.ComponentInteraction {
	interaction := models.ComponentInteraction{
		CustomID:  i.MessageComponentData().CustomID,
		ChannelID: i.ChannelID,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		interaction.UserID = i.Member.User.ID
	case i.User != nil:
		interaction.UserID = i.User.ID
	}
	return interaction
}
