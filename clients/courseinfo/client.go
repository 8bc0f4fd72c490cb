package courseinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/samber/mo"
	"golang.org/x/net/html"

	"ecessbot/clients"
	"ecessbot/core/log"
	"ecessbot/models"
)

const (
	defaultScheduleURL = "https://courses.students.ubc.ca/cs/courseschedule"
	// The calendar archive is not served over TLS
	defaultArchiveURL = "http://www.calendar.ubc.ca/vancouver/courses.cfm"

	scheduleSource = "Source: UBC Course Schedule"
	archiveSource  = "Source: UBC Course Archive"

	maxPageSize = 4 << 20
)

var (
	archiveTitleRegex   = regexp.MustCompile(`(?s)^.+?\(([0-9]+?)\)(.+)$`)
	archivePrereqRegex  = regexp.MustCompile(`(?s)Prerequisite:(.+?\.)`)
	archiveCoreqRegex   = regexp.MustCompile(`(?s)Corequisite:(.+?\.)`)
	creditDFailSentence = "This course is not eligible for Credit/D/Fail grading."
)

// errTransient marks failures worth retrying
var errTransient = errors.New("transient course lookup failure")

// Client scrapes course metadata from the course schedule, falling back to the calendar archive
type Client struct {
	httpClient     *http.Client
	scheduleURL    string
	archiveURL     string
	retryIntervals []time.Duration
}

var _ clients.CourseInfoClient = (*Client)(nil)

// NewClient builds a scraper that retries transient failures up to retries times
func NewClient(httpClient *http.Client, retries int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient:     httpClient,
		scheduleURL:    defaultScheduleURL,
		archiveURL:     defaultArchiveURL,
		retryIntervals: retrySchedule(retries),
	}
}

func retrySchedule(retries int) []time.Duration {
	intervals := make([]time.Duration, 0, retries)
	interval := 250 * time.Millisecond
	for range retries {
		intervals = append(intervals, interval)
		interval *= 2
	}
	return intervals
}

func (c *Client) Lookup(ctx context.Context, course models.Course) (mo.Option[models.CourseInfo], error) {
	log.Debug("📋 Starting to look up course info", "course", course.String())

	info, err := c.lookupSchedule(ctx, course)
	if err != nil {
		log.Warn("⚠️ Course schedule lookup failed, trying archive", "course", course.String(), "error", err)
	}
	if info.IsPresent() {
		return info, nil
	}

	archiveInfo, archiveErr := c.lookupArchive(ctx, course)
	if archiveErr != nil {
		if err != nil {
			return mo.None[models.CourseInfo](), fmt.Errorf("failed to look up %s: %w", course, errors.Join(err, archiveErr))
		}
		return mo.None[models.CourseInfo](), fmt.Errorf("failed to look up %s in archive: %w", course, archiveErr)
	}

	log.Debug("✅ Finished course info lookup", "course", course.String(), "found", archiveInfo.IsPresent())
	return archiveInfo, nil
}

func (c *Client) scheduleCourseURL(course models.Course) string {
	query := url.Values{}
	query.Set("pname", "subjarea")
	query.Set("tname", "subj-course")
	query.Set("dept", course.Dept)
	query.Set("course", course.Code)
	return c.scheduleURL + "?" + query.Encode()
}

func (c *Client) archiveDeptURL(course models.Course) string {
	query := url.Values{}
	query.Set("page", "code")
	query.Set("code", course.Dept)
	return c.archiveURL + "?" + query.Encode()
}

func (c *Client) lookupSchedule(ctx context.Context, course models.Course) (mo.Option[models.CourseInfo], error) {
	pageURL := c.scheduleCourseURL(course)
	doc, err := c.fetchWithRetry(ctx, pageURL)
	if err != nil {
		return mo.None[models.CourseInfo](), err
	}

	title := findNode(doc, func(n *html.Node) bool {
		return isElement(n, "h4") && mentionsCourse(textContent(n), course)
	})
	if title == nil {
		return mo.None[models.CourseInfo](), nil
	}

	info := models.CourseInfo{
		URL:           pageURL,
		Name:          strings.TrimSpace(textContent(title)),
		Description:   strings.TrimSpace(textContent(nextElementSibling(title))),
		Prerequisites: paragraphValue(doc, "Pre-reqs:", "None"),
		Corequisites:  paragraphValue(doc, "Co-reqs:", "None"),
		Credits:       paragraphValue(doc, "Credits:", "Not found"),
		Source:        scheduleSource,
	}
	return mo.Some(info), nil
}

func (c *Client) lookupArchive(ctx context.Context, course models.Course) (mo.Option[models.CourseInfo], error) {
	pageURL := c.archiveDeptURL(course)
	doc, err := c.fetchWithRetry(ctx, pageURL)
	if err != nil {
		return mo.None[models.CourseInfo](), err
	}

	title := findNode(doc, func(n *html.Node) bool {
		return isElement(n, "dt") && mentionsCourse(textContent(n), course)
	})
	if title == nil {
		return mo.None[models.CourseInfo](), nil
	}
	titleMatch := archiveTitleRegex.FindStringSubmatch(textContent(title))
	if titleMatch == nil {
		return mo.None[models.CourseInfo](), nil
	}

	description := ""
	if dd := findFollowing(title, "dd"); dd != nil {
		description = textContent(dd)
	}
	description = strings.ReplaceAll(description, creditDFailSentence, "")

	prereqs := "None"
	if match := archivePrereqRegex.FindStringSubmatch(description); match != nil {
		prereqs = strings.TrimSpace(match[1])
		description = strings.Replace(description, match[0], "", 1)
	}
	coreqs := "None"
	if match := archiveCoreqRegex.FindStringSubmatch(description); match != nil {
		coreqs = strings.TrimSpace(match[1])
		description = strings.Replace(description, match[0], "", 1)
	}

	info := models.CourseInfo{
		URL:           pageURL,
		Name:          fmt.Sprintf("%s %s", course, strings.TrimSpace(titleMatch[2])),
		Description:   strings.TrimSpace(description),
		Prerequisites: prereqs,
		Corequisites:  coreqs,
		Credits:       titleMatch[1],
		Source:        archiveSource,
	}
	return mo.Some(info), nil
}

func (c *Client) fetchWithRetry(ctx context.Context, pageURL string) (*html.Node, error) {
	doc, err := c.fetch(ctx, pageURL)
	for attempt, interval := range c.retryIntervals {
		if err == nil || !errors.Is(err, errTransient) {
			break
		}
		log.Debug("⏱️ Retrying course page fetch", "url", pageURL, "attempt", attempt+1, "of", len(c.retryIntervals), "wait", interval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		doc, err = c.fetch(ctx, pageURL)
	}
	return doc, err
}

func (c *Client) fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", errTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: HTTP %d", errTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse course page: %w", err)
	}
	return doc, nil
}

func mentionsCourse(text string, course models.Course) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, course.Dept) && strings.Contains(upper, course.Code)
}

func paragraphValue(doc *html.Node, label, fallback string) string {
	p := findNode(doc, func(n *html.Node) bool {
		return isElement(n, "p") && strings.Contains(textContent(n), label)
	})
	if p == nil {
		return fallback
	}
	return strings.TrimSpace(strings.Replace(textContent(p), label, "", 1))
}
