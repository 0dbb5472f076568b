package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

// mockRepo is an in-memory repositories.Repository. WithTransaction snapshots
// the state and restores it when the callback fails, so rollback behavior is
// observable in tests. Failures are injected per operation via failures.
type mockRepo struct {
	users       map[uint]*models.User
	projects    map[uint]*models.Project
	members     map[uint]map[uint]*models.ProjectMember
	invitations []*models.ProjectInvitation
	tasks       map[uint]*models.Task
	assignments []*models.TaskAssignment
	messages    []*models.ChatMessage
	attachments map[uint]*models.FileAttachment

	nextUserID       uint
	nextProjectID    uint
	nextTaskID       uint
	nextAssignmentID uint
	nextMessageID    uint
	nextAttachmentID uint
	nextMemberID     uint

	// failures maps an operation name like "invitation.create" to the error
	// its next call should return
	failures map[string]error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:       make(map[uint]*models.User),
		projects:    make(map[uint]*models.Project),
		members:     make(map[uint]map[uint]*models.ProjectMember),
		tasks:       make(map[uint]*models.Task),
		attachments: make(map[uint]*models.FileAttachment),
		failures:    make(map[string]error),
	}
}

func (m *mockRepo) failOn(op string, err error) {
	m.failures[op] = err
}

func (m *mockRepo) fail(op string) error {
	if err, ok := m.failures[op]; ok {
		return err
	}
	return nil
}

// ===== seeding helpers =====

func (m *mockRepo) addUser(username, email string) *models.User {
	m.nextUserID++
	user := &models.User{
		ID:       m.nextUserID,
		Username: username,
		Email:    strings.ToLower(email),
	}
	m.users[user.ID] = user
	return user
}

func (m *mockRepo) addProject(name string, createdBy uint) *models.Project {
	m.nextProjectID++
	project := &models.Project{
		ID:        m.nextProjectID,
		Name:      name,
		CreatedBy: createdBy,
	}
	m.projects[project.ID] = project
	return project
}

func (m *mockRepo) addMember(projectID, userID uint, role models.ProjectRole) *models.ProjectMember {
	m.nextMemberID++
	member := &models.ProjectMember{
		ID:        m.nextMemberID,
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if m.members[projectID] == nil {
		m.members[projectID] = make(map[uint]*models.ProjectMember)
	}
	m.members[projectID][userID] = member
	return member
}

func (m *mockRepo) addTask(projectID uint, name string, status models.TaskStatus) *models.Task {
	m.nextTaskID++
	task := &models.Task{
		ID:        m.nextTaskID,
		ProjectID: projectID,
		Name:      name,
		Status:    status,
	}
	m.tasks[task.ID] = task
	return task
}

func (m *mockRepo) addAssignment(taskID, userID uint) *models.TaskAssignment {
	m.nextAssignmentID++
	assignment := &models.TaskAssignment{
		ID:     m.nextAssignmentID,
		TaskID: taskID,
		UserID: userID,
	}
	m.assignments = append(m.assignments, assignment)
	return assignment
}

// ===== aggregate interface =====

func (m *mockRepo) User() repositories.UserRepository             { return (*mockUserRepo)(m) }
func (m *mockRepo) Project() repositories.ProjectRepository       { return (*mockProjectRepo)(m) }
func (m *mockRepo) Member() repositories.MemberRepository         { return (*mockMemberRepo)(m) }
func (m *mockRepo) Invitation() repositories.InvitationRepository { return (*mockInvitationRepo)(m) }
func (m *mockRepo) Task() repositories.TaskRepository             { return (*mockTaskRepo)(m) }
func (m *mockRepo) Assignment() repositories.AssignmentRepository { return (*mockAssignmentRepo)(m) }
func (m *mockRepo) Analytics() repositories.AnalyticsRepository   { return (*mockAnalyticsRepo)(m) }
func (m *mockRepo) Chat() repositories.ChatRepository             { return (*mockChatRepo)(m) }
func (m *mockRepo) Attachment() repositories.AttachmentRepository { return (*mockAttachmentRepo)(m) }

func (m *mockRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *mockRepo) Ping(ctx context.Context) error { return nil }
func (m *mockRepo) Close() error                   { return nil }

type mockState struct {
	users       map[uint]*models.User
	projects    map[uint]*models.Project
	members     map[uint]map[uint]*models.ProjectMember
	invitations []*models.ProjectInvitation
	tasks       map[uint]*models.Task
	assignments []*models.TaskAssignment
	messages    []*models.ChatMessage
	attachments map[uint]*models.FileAttachment

	nextUserID       uint
	nextProjectID    uint
	nextTaskID       uint
	nextAssignmentID uint
	nextMessageID    uint
	nextAttachmentID uint
	nextMemberID     uint
}

func (m *mockRepo) snapshot() mockState {
	s := mockState{
		users:            make(map[uint]*models.User, len(m.users)),
		projects:         make(map[uint]*models.Project, len(m.projects)),
		members:          make(map[uint]map[uint]*models.ProjectMember, len(m.members)),
		invitations:      append([]*models.ProjectInvitation(nil), m.invitations...),
		tasks:            make(map[uint]*models.Task, len(m.tasks)),
		assignments:      append([]*models.TaskAssignment(nil), m.assignments...),
		messages:         append([]*models.ChatMessage(nil), m.messages...),
		attachments:      make(map[uint]*models.FileAttachment, len(m.attachments)),
		nextUserID:       m.nextUserID,
		nextProjectID:    m.nextProjectID,
		nextTaskID:       m.nextTaskID,
		nextAssignmentID: m.nextAssignmentID,
		nextMessageID:    m.nextMessageID,
		nextAttachmentID: m.nextAttachmentID,
		nextMemberID:     m.nextMemberID,
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.projects {
		s.projects[k] = v
	}
	for pid, byUser := range m.members {
		inner := make(map[uint]*models.ProjectMember, len(byUser))
		for uid, mem := range byUser {
			copied := *mem
			inner[uid] = &copied
		}
		s.members[pid] = inner
	}
	for k, v := range m.tasks {
		s.tasks[k] = v
	}
	for k, v := range m.attachments {
		s.attachments[k] = v
	}
	return s
}

func (m *mockRepo) restore(s mockState) {
	m.users = s.users
	m.projects = s.projects
	m.members = s.members
	m.invitations = s.invitations
	m.tasks = s.tasks
	m.assignments = s.assignments
	m.messages = s.messages
	m.attachments = s.attachments
	m.nextUserID = s.nextUserID
	m.nextProjectID = s.nextProjectID
	m.nextTaskID = s.nextTaskID
	m.nextAssignmentID = s.nextAssignmentID
	m.nextMessageID = s.nextMessageID
	m.nextAttachmentID = s.nextAttachmentID
	m.nextMemberID = s.nextMemberID
}

// ===== users =====

type mockUserRepo mockRepo

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := (*mockRepo)(r).fail("user.create"); err != nil {
		return err
	}
	r.nextUserID++
	user.ID = r.nextUserID
	user.Email = strings.ToLower(user.Email)
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	if err := (*mockRepo)(r).fail("user.getByEmail"); err != nil {
		return nil, err
	}
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByUsernames(ctx context.Context, tx *gorm.DB, usernames []string) ([]*models.User, error) {
	var out []*models.User
	for _, name := range usernames {
		if user, err := r.GetByUsername(ctx, tx, name); err == nil {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== projects =====

type mockProjectRepo mockRepo

func (r *mockProjectRepo) Create(ctx context.Context, tx *gorm.DB, project *models.Project) error {
	if err := (*mockRepo)(r).fail("project.create"); err != nil {
		return err
	}
	r.nextProjectID++
	project.ID = r.nextProjectID
	r.projects[project.ID] = project
	return nil
}

func (r *mockProjectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Project, error) {
	if err := (*mockRepo)(r).fail("project.getByID"); err != nil {
		return nil, err
	}
	if project, ok := r.projects[id]; ok {
		return project, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProjectRepo) GetByIDWithMembers(ctx context.Context, tx *gorm.DB, id uint) (*models.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *project
	copied.Members = nil
	for _, member := range r.members[id] {
		withUser := *member
		withUser.User = r.users[member.UserID]
		copied.Members = append(copied.Members, withUser)
	}
	sort.Slice(copied.Members, func(i, j int) bool { return copied.Members[i].UserID < copied.Members[j].UserID })
	return &copied, nil
}

func (r *mockProjectRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Project, error) {
	var out []*models.Project
	for _, project := range r.projects {
		if project.CreatedBy == userID {
			out = append(out, project)
			continue
		}
		if byUser, ok := r.members[project.ID]; ok {
			if _, isMember := byUser[userID]; isMember {
				out = append(out, project)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockProjectRepo) Update(ctx context.Context, tx *gorm.DB, project *models.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.projects[project.ID] = project
	return nil
}

func (r *mockProjectRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := (*mockRepo)(r).fail("project.delete"); err != nil {
		return err
	}
	if _, ok := r.projects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.projects, id)
	delete(r.members, id)
	return nil
}

func (r *mockProjectRepo) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	_, ok := r.projects[id]
	return ok, nil
}

// ===== members =====

type mockMemberRepo mockRepo

func (r *mockMemberRepo) Upsert(ctx context.Context, tx *gorm.DB, member *models.ProjectMember) error {
	if err := (*mockRepo)(r).fail("member.upsert"); err != nil {
		return err
	}
	if r.members[member.ProjectID] == nil {
		r.members[member.ProjectID] = make(map[uint]*models.ProjectMember)
	}
	if existing, ok := r.members[member.ProjectID][member.UserID]; ok {
		existing.Role = member.Role
		existing.UpdatedAt = time.Now()
		return nil
	}
	r.nextMemberID++
	member.ID = r.nextMemberID
	r.members[member.ProjectID][member.UserID] = member
	return nil
}

func (r *mockMemberRepo) Get(ctx context.Context, tx *gorm.DB, projectID, userID uint) (*models.ProjectMember, error) {
	if byUser, ok := r.members[projectID]; ok {
		if member, ok := byUser[userID]; ok {
			return member, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockMemberRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.ProjectMember, error) {
	var out []*models.ProjectMember
	for _, member := range r.members[projectID] {
		withUser := *member
		withUser.User = r.users[member.UserID]
		out = append(out, &withUser)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *mockMemberRepo) Delete(ctx context.Context, tx *gorm.DB, projectID, userID uint) error {
	if byUser, ok := r.members[projectID]; ok {
		if _, ok := byUser[userID]; ok {
			delete(byUser, userID)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ===== invitations =====

type mockInvitationRepo mockRepo

func (r *mockInvitationRepo) Create(ctx context.Context, tx *gorm.DB, invitation *models.ProjectInvitation) error {
	if err := (*mockRepo)(r).fail("invitation.create"); err != nil {
		return err
	}
	invitation.ID = uint(len(r.invitations) + 1)
	invitation.Email = strings.ToLower(invitation.Email)
	r.invitations = append(r.invitations, invitation)
	return nil
}

func (r *mockInvitationRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.ProjectInvitation, error) {
	var out []*models.ProjectInvitation
	for _, inv := range r.invitations {
		if inv.ProjectID == projectID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *mockInvitationRepo) ListByEmail(ctx context.Context, tx *gorm.DB, email string) ([]*models.ProjectInvitation, error) {
	var out []*models.ProjectInvitation
	for _, inv := range r.invitations {
		if inv.Email == strings.ToLower(email) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// ===== tasks =====

type mockTaskRepo mockRepo

func (r *mockTaskRepo) Create(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	if err := (*mockRepo)(r).fail("task.create"); err != nil {
		return err
	}
	r.nextTaskID++
	task.ID = r.nextTaskID
	r.tasks[task.ID] = task
	return nil
}

func (r *mockTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	if task, ok := r.tasks[id]; ok {
		return task, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTaskRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint, filters repositories.TaskFilters) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range r.tasks {
		if task.ProjectID == projectID {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockTaskRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TaskStatus) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	task.Status = status
	return task, nil
}

func (r *mockTaskRepo) UpdateDueDate(ctx context.Context, tx *gorm.DB, id uint, dueDate time.Time) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	task.DueDate = &dueDate
	return task, nil
}

func (r *mockTaskRepo) UpdateDescription(ctx context.Context, tx *gorm.DB, id uint, description string) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	task.Description = &description
	return task, nil
}

func (r *mockTaskRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := (*mockRepo)(r).fail("task.delete"); err != nil {
		return err
	}
	if _, ok := r.tasks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.tasks, id)
	kept := r.assignments[:0]
	for _, a := range r.assignments {
		if a.TaskID != id {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

// ===== assignments =====

type mockAssignmentRepo mockRepo

func (r *mockAssignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *models.TaskAssignment) error {
	if err := (*mockRepo)(r).fail("assignment.create"); err != nil {
		return err
	}
	for _, a := range r.assignments {
		if a.TaskID == assignment.TaskID && a.UserID == assignment.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextAssignmentID++
	assignment.ID = r.nextAssignmentID
	r.assignments = append(r.assignments, assignment)
	return nil
}

func (r *mockAssignmentRepo) Exists(ctx context.Context, tx *gorm.DB, taskID, userID uint) (bool, error) {
	for _, a := range r.assignments {
		if a.TaskID == taskID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockAssignmentRepo) ListByTask(ctx context.Context, tx *gorm.DB, taskID uint) ([]*models.TaskAssignment, error) {
	var out []*models.TaskAssignment
	for _, a := range r.assignments {
		if a.TaskID == taskID {
			withUser := *a
			withUser.User = r.users[a.UserID]
			out = append(out, &withUser)
		}
	}
	return out, nil
}

func (r *mockAssignmentRepo) DeleteByTask(ctx context.Context, tx *gorm.DB, taskID uint) error {
	kept := r.assignments[:0]
	for _, a := range r.assignments {
		if a.TaskID != taskID {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

// ===== analytics =====

type mockAnalyticsRepo mockRepo

func (r *mockAnalyticsRepo) TaskStatusCounts(ctx context.Context, tx *gorm.DB, projectID uint) (*repositories.TaskStatusCounts, error) {
	counts := &repositories.TaskStatusCounts{}
	for _, task := range r.tasks {
		if task.ProjectID != projectID {
			continue
		}
		counts.Total++
		switch task.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusOngoing:
			counts.Ongoing++
		case models.StatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (r *mockAnalyticsRepo) WorkloadRows(ctx context.Context, tx *gorm.DB, projectID uint) ([]*repositories.WorkloadRow, error) {
	perUser := make(map[uint]map[uint]bool)
	for _, a := range r.assignments {
		task, ok := r.tasks[a.TaskID]
		if !ok || task.ProjectID != projectID {
			continue
		}
		if perUser[a.UserID] == nil {
			perUser[a.UserID] = make(map[uint]bool)
		}
		perUser[a.UserID][a.TaskID] = true
	}

	var rows []*repositories.WorkloadRow
	for userID, taskSet := range perUser {
		row := &repositories.WorkloadRow{UserID: userID, TaskCount: int64(len(taskSet))}
		if user, ok := r.users[userID]; ok {
			row.Username = user.Username
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TaskCount != rows[j].TaskCount {
			return rows[i].TaskCount > rows[j].TaskCount
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows, nil
}

func (r *mockAnalyticsRepo) DistinctAssignedTasks(ctx context.Context, tx *gorm.DB, projectID uint) (int64, error) {
	seen := make(map[uint]bool)
	for _, a := range r.assignments {
		task, ok := r.tasks[a.TaskID]
		if ok && task.ProjectID == projectID {
			seen[a.TaskID] = true
		}
	}
	return int64(len(seen)), nil
}

// ===== chat =====

type mockChatRepo mockRepo

func (r *mockChatRepo) Create(ctx context.Context, tx *gorm.DB, message *models.ChatMessage) error {
	r.nextMessageID++
	message.ID = r.nextMessageID
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *mockChatRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint, limit int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, msg := range r.messages {
		if msg.ProjectID == projectID {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// ===== attachments =====

type mockAttachmentRepo mockRepo

func (r *mockAttachmentRepo) Create(ctx context.Context, tx *gorm.DB, attachment *models.FileAttachment) error {
	r.nextAttachmentID++
	attachment.ID = r.nextAttachmentID
	r.attachments[attachment.ID] = attachment
	return nil
}

func (r *mockAttachmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.FileAttachment, error) {
	if attachment, ok := r.attachments[id]; ok {
		return attachment, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAttachmentRepo) ListByTask(ctx context.Context, tx *gorm.DB, taskID uint) ([]*models.FileAttachment, error) {
	var out []*models.FileAttachment
	for _, attachment := range r.attachments {
		if attachment.TaskID != nil && *attachment.TaskID == taskID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

func (r *mockAttachmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.attachments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.attachments, id)
	return nil
}
