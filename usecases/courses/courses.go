package courses

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/metrics"
	"ecessbot/models"
	"ecessbot/services"
	"ecessbot/services/coursethreads"
)

const (
	listingPageSize = 25
	searchPageSize  = 10
)

// CoursesUseCase manages course threads. Every mutation of the course document that spans
// remote calls runs under mu; reads do not take it.
type CoursesUseCase struct {
	discordClient        clients.DiscordClient
	courseInfoClient     clients.CourseInfoClient
	courseThreadsService services.CourseThreadsService
	scheduleService      services.ScheduleService
	promptsService       services.PromptsService
	lookupLimiter        *rate.Limiter
	autoArchiveDuration  int
	buttonConfirmTimeout time.Duration

	mu sync.Mutex
}

func NewCoursesUseCase(
	discordClient clients.DiscordClient,
	courseInfoClient clients.CourseInfoClient,
	courseThreadsService services.CourseThreadsService,
	scheduleService services.ScheduleService,
	promptsService services.PromptsService,
	lookupDelay time.Duration,
	autoArchiveDuration int,
	buttonConfirmTimeout time.Duration,
) *CoursesUseCase {
	limit := rate.Inf
	if lookupDelay > 0 {
		limit = rate.Every(lookupDelay)
	}
	return &CoursesUseCase{
		discordClient:        discordClient,
		courseInfoClient:     courseInfoClient,
		courseThreadsService: courseThreadsService,
		scheduleService:      scheduleService,
		promptsService:       promptsService,
		lookupLimiter:        rate.NewLimiter(limit, 1),
		autoArchiveDuration:  autoArchiveDuration,
		buttonConfirmTimeout: buttonConfirmTimeout,
	}
}

// RegisterBase sets the channel course threads of yearLevel are started in, and restricts
// the channel so members can only use public threads there
func (u *CoursesUseCase) RegisterBase(
	ctx context.Context,
	inv models.Invocation,
	yearLevel, channelID string,
) (*models.CommandResult, error) {
	log.Info("📋 Starting to register base channel", "year_level", yearLevel, "channel_id", channelID)

	channel, err := u.lookupChannel(ctx, channelID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, core.NewValidationError("I couldn't find that channel.")
		}
		return nil, fmt.Errorf("failed to resolve channel: %w", err)
	}
	if channel.GuildID != inv.GuildID {
		return nil, core.NewValidationError("That channel isn't in this guild.")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.courseThreadsService.RegisterBase(ctx, yearLevel, channel.ID); err != nil {
		return nil, err
	}

	result := models.NewCommandResult(fmt.Sprintf(
		"Done! Added %s as the base for year level: `%s`.", channel.Mention(), yearLevel))
	if err := u.discordClient.RestrictToPublicThreads(ctx, inv.GuildID, channel.ID); err != nil {
		log.Warn("⚠️ Failed to restrict base channel permissions", "channel_id", channel.ID, "error", err)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("I couldn't update the permissions of %s. Members may still be able to post there.", channel.Mention()))
	}

	log.Info("✅ Registered base channel", "year_level", yearLevel, "channel_id", channel.ID)
	return result, nil
}

func (u *CoursesUseCase) CreateThread(
	ctx context.Context,
	inv models.Invocation,
	course models.Course,
) (*models.CommandResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	thread, err := u.createThreadLocked(ctx, course)
	if err != nil {
		return nil, err
	}
	return models.NewCommandResult("Done! Created thread here: " + thread.Mention()), nil
}

// createThreadLocked requires mu to be held
func (u *CoursesUseCase) createThreadLocked(ctx context.Context, course models.Course) (*models.Thread, error) {
	log.Info("📋 Starting to create course thread", "course", course.String())

	existing, err := u.courseThreadsService.GetCourseThread(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course %s: %w", course, err)
	}
	if existing.IsPresent() {
		return nil, coursethreads.CourseExistsError(course)
	}

	maybeBase, err := u.courseThreadsService.GetBase(ctx, course.YearLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to look up base channel: %w", err)
	}
	baseChannelID, ok := maybeBase.Get()
	if !ok {
		return nil, coursethreads.NoBaseError(course)
	}

	baseMessage, err := u.discordClient.SendMessage(ctx, baseChannelID, models.OutgoingMessage{
		Content: fmt.Sprintf("Thread for `%s`", course),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post thread starter for %s: %w", course, err)
	}

	thread, err := u.discordClient.StartThread(ctx, baseChannelID, baseMessage.ID, course.String(), u.autoArchiveDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to start thread for %s: %w", course, err)
	}

	if err := u.courseThreadsService.AddCourse(ctx, course, thread.ID); err != nil {
		return nil, err
	}

	log.Info("✅ Created course thread", "course", course.String(), "thread_id", thread.ID)
	return thread, nil
}

// DeleteThread locks and archives the course thread, then forgets it. This cannot be undone.
func (u *CoursesUseCase) DeleteThread(
	ctx context.Context,
	inv models.Invocation,
	course models.Course,
) (*models.CommandResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	log.Info("📋 Starting to delete course thread", "course", course.String(), "user_id", inv.UserID)
	threadID, err := u.requireCourseThread(ctx, course)
	if err != nil {
		return nil, err
	}

	archived, locked := true, true
	err = u.discordClient.EditThread(ctx, threadID, models.ThreadEdit{Archived: &archived, Locked: &locked})
	if err != nil && !core.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to lock thread for %s: %w", course, err)
	}

	if _, err := u.courseThreadsService.RemoveCourse(ctx, course); err != nil {
		return nil, err
	}

	log.Info("✅ Deleted course thread", "course", course.String(), "thread_id", threadID)
	return models.NewCommandResult(fmt.Sprintf(
		"Done! Locked %s and removed the mapping.", models.ChannelMention(threadID))), nil
}

// Join is idempotent
func (u *CoursesUseCase) Join(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	threadID, err := u.requireCourseThread(ctx, course)
	if err != nil {
		return nil, err
	}
	if err := u.discordClient.AddThreadMember(ctx, threadID, inv.UserID); err != nil {
		return nil, fmt.Errorf("failed to add member to %s thread: %w", course, err)
	}
	return models.NewCommandResult(fmt.Sprintf(
		"Done! Added you to %s. You may want to change your notification settings for the thread.",
		models.ChannelMention(threadID))), nil
}

// Leave is idempotent
func (u *CoursesUseCase) Leave(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	threadID, err := u.requireCourseThread(ctx, course)
	if err != nil {
		return nil, err
	}
	if err := u.discordClient.RemoveThreadMember(ctx, threadID, inv.UserID); err != nil && !core.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to remove member from %s thread: %w", course, err)
	}
	return models.NewCommandResult(fmt.Sprintf(
		"Done! Removed you from %s, whether you were in it or not.", models.ChannelMention(threadID))), nil
}

func (u *CoursesUseCase) List(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	courses, err := u.courseThreadsService.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if len(courses) == 0 {
		return models.NewCommandResult("There are no course threads yet."), nil
	}

	var entries []string
	currentYear := ""
	for _, course := range courses {
		if course.YearLevel != currentYear {
			currentYear = course.YearLevel
			entries = append(entries, fmt.Sprintf("**Level `%sxx`**", currentYear))
		}
		entries = append(entries, "  - "+u.describeCourseThread(ctx, course))
	}

	return &models.CommandResult{
		Listing: &models.Listing{Title: "Available Courses", Entries: entries, EntriesPerPage: listingPageSize},
	}, nil
}

func (u *CoursesUseCase) Search(ctx context.Context, inv models.Invocation, query string) (*models.CommandResult, error) {
	matches, err := u.courseThreadsService.SearchCourses(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	if len(matches) == 0 {
		return models.NewCommandResult(fmt.Sprintf("No courses found for `%s`.", query)), nil
	}

	entries := make([]string, 0, len(matches))
	for _, match := range matches {
		entries = append(entries, "- "+u.describeCourseThread(ctx, match))
	}
	return &models.CommandResult{
		Listing: &models.Listing{
			Title:          fmt.Sprintf("Courses Matching: `%s`", query),
			Entries:        entries,
			EntriesPerPage: searchPageSize,
		},
	}, nil
}

// Info renders what the course pages say about course
func (u *CoursesUseCase) Info(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	maybeInfo, err := u.courseInfoClient.Lookup(ctx, course)
	if err != nil {
		metrics.CourseLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up %s: %w", course, err)
	}
	info, ok := maybeInfo.Get()
	if !ok {
		metrics.CourseLookups.WithLabelValues("not_found").Inc()
		return nil, core.NewValidationError("I couldn't find any information for `%s`.", course)
	}
	metrics.CourseLookups.WithLabelValues("found").Inc()

	return &models.CommandResult{Embeds: []models.Embed{courseInfoEmbed(info)}}, nil
}

// ThreadSource exposes the course document to the reconciler. Pruning and repairs take the course
// lock so they never interleave with a create or delete.
func (u *CoursesUseCase) ThreadSource() services.ThreadSource {
	return &lockedThreadSource{useCase: u}
}

type lockedThreadSource struct {
	useCase *CoursesUseCase
}

func (s *lockedThreadSource) TrackedThreads(ctx context.Context) ([]string, error) {
	return s.useCase.courseThreadsService.TrackedThreads(ctx)
}

func (s *lockedThreadSource) PruneThread(ctx context.Context, threadID string) (bool, error) {
	s.useCase.mu.Lock()
	defer s.useCase.mu.Unlock()
	return s.useCase.courseThreadsService.PruneThread(ctx, threadID)
}

func (u *CoursesUseCase) requireCourseThread(ctx context.Context, course models.Course) (string, error) {
	maybeThread, err := u.courseThreadsService.GetCourseThread(ctx, course)
	if err != nil {
		return "", fmt.Errorf("failed to look up course %s: %w", course, err)
	}
	threadID, ok := maybeThread.Get()
	if !ok {
		return "", coursethreads.MissingCourseError(course)
	}
	return threadID, nil
}

func (u *CoursesUseCase) describeCourseThread(ctx context.Context, course models.CourseThread) string {
	if _, err := u.lookupThread(ctx, course.ThreadID); err != nil {
		log.Debug("Course thread did not resolve", "course", course.Course, "thread_id", course.ThreadID, "error", err)
		return fmt.Sprintf("`%s`: %s (error getting thread)", course.Course, course.ThreadID)
	}
	return fmt.Sprintf("`%s`: %s", course.Course, models.ChannelMention(course.ThreadID))
}

func (u *CoursesUseCase) lookupThread(ctx context.Context, threadID string) (*models.Thread, error) {
	if cached, ok := u.discordClient.GetCachedThread(threadID).Get(); ok {
		return cached, nil
	}
	return u.discordClient.FetchThread(ctx, threadID)
}

func (u *CoursesUseCase) lookupChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	if cached, ok := u.discordClient.GetCachedChannel(channelID).Get(); ok {
		return cached, nil
	}
	return u.discordClient.FetchChannel(ctx, channelID)
}

func courseInfoEmbed(info models.CourseInfo) models.Embed {
	return models.Embed{
		Title:       info.Name,
		URL:         info.URL,
		Description: info.Description,
		Footer:      info.Source,
		Fields: []models.EmbedField{
			{Name: "Prerequisites", Value: info.Prerequisites},
			{Name: "Corequisites", Value: info.Corequisites},
			{Name: "Credits", Value: info.Credits, Inline: true},
		},
	}
}

func (s *lockedThreadSource) RepairIfTracked(
	ctx context.Context,
	threadID string,
	repair func(ctx context.Context) error,
) (bool, error) {
	s.useCase.mu.Lock()
	defer s.useCase.mu.Unlock()
	return s.useCase.courseThreadsService.RepairIfTracked(ctx, threadID, repair)
}
