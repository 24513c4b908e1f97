package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
)

type requestRepo struct{ tx *Tx }

func (r *requestRepo) Create(ctx context.Context, request *model.Request) error {
	if err := r.tx.check(ctx, "requests.create"); err != nil {
		return err
	}
	request.ID = r.tx.data.newID()
	request.CreatedAt = r.tx.now()
	r.tx.data.requests[request.ID] = *request
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	if err := r.tx.check(ctx, "requests.get_by_id"); err != nil {
		return nil, err
	}
	request, ok := r.tx.data.requests[id]
	if !ok {
		return nil, nil
	}
	return &request, nil
}

func (r *requestRepo) LockByID(ctx context.Context, id int64) (*model.Request, error) {
	if err := r.tx.check(ctx, "requests.lock_by_id"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *requestRepo) ListOpen(ctx context.Context, viewerID int64, limit int) ([]*model.Request, error) {
	if err := r.tx.check(ctx, "requests.list_open"); err != nil {
		return nil, err
	}

	claimed := make(map[int64]bool, len(r.tx.data.acceptances))
	for _, a := range r.tx.data.acceptances {
		claimed[a.RequestID] = true
	}

	var requests []*model.Request
	for _, req := range r.tx.data.requests {
		if req.Status != model.RequestStatusPending || claimed[req.ID] || req.LearnerID == viewerID {
			continue
		}
		if req.IsPrivate && !req.IsDirectedTo(viewerID) {
			continue
		}
		req := req
		requests = append(requests, &req)
	}

	sort.Slice(requests, func(i, j int) bool { return requests[i].ID > requests[j].ID })
	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}
	return requests, nil
}

func (r *requestRepo) UpdateStatus(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error) {
	if err := r.tx.check(ctx, "requests.update_status"); err != nil {
		return false, err
	}
	request, ok := r.tx.data.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = to
	r.tx.data.requests[id] = request
	return true, nil
}

type acceptanceRepo struct{ tx *Tx }

func (r *acceptanceRepo) Create(ctx context.Context, acceptance *model.AcceptedRequest) error {
	if err := r.tx.check(ctx, "acceptances.create"); err != nil {
		return err
	}
	if _, ok := r.tx.data.requests[acceptance.RequestID]; !ok {
		return apperr.New(apperr.KindNotFound, "create acceptance", "request not found")
	}
	for _, a := range r.tx.data.acceptances {
		if a.RequestID == acceptance.RequestID {
			return apperr.New(apperr.KindAlreadyAccepted, "create acceptance", "request already accepted")
		}
	}

	acceptance.ID = r.tx.data.newID()
	acceptance.AcceptedAt = r.tx.now()
	stored := *acceptance
	stored.Request = nil
	r.tx.data.acceptances[acceptance.ID] = stored
	return nil
}

func (r *acceptanceRepo) GetByID(ctx context.Context, id int64) (*model.AcceptedRequest, error) {
	if err := r.tx.check(ctx, "acceptances.get_by_id"); err != nil {
		return nil, err
	}
	acceptance, ok := r.tx.data.acceptances[id]
	if !ok {
		return nil, nil
	}
	return &acceptance, nil
}

func (r *acceptanceRepo) LockByID(ctx context.Context, id int64) (*model.AcceptedRequest, error) {
	if err := r.tx.check(ctx, "acceptances.lock_by_id"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *acceptanceRepo) GetByRequestID(ctx context.Context, requestID int64) (*model.AcceptedRequest, error) {
	if err := r.tx.check(ctx, "acceptances.get_by_request_id"); err != nil {
		return nil, err
	}
	for _, a := range r.tx.data.acceptances {
		if a.RequestID == requestID {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r *acceptanceRepo) LockLiveByAcceptor(ctx context.Context, acceptorID int64) ([]*model.AcceptedRequest, error) {
	if err := r.tx.check(ctx, "acceptances.lock_live_by_acceptor"); err != nil {
		return nil, err
	}
	var acceptances []*model.AcceptedRequest
	for _, a := range r.tx.data.acceptances {
		if a.AcceptorID != acceptorID || a.Status == model.AcceptanceStatusCompleted {
			continue
		}
		a := a
		acceptances = append(acceptances, &a)
	}
	sort.Slice(acceptances, func(i, j int) bool { return acceptances[i].ID < acceptances[j].ID })
	return acceptances, nil
}

func (r *acceptanceRepo) Schedule(ctx context.Context, id int64, meeting model.Meeting) (bool, error) {
	if err := r.tx.check(ctx, "acceptances.schedule"); err != nil {
		return false, err
	}
	acceptance, ok := r.tx.data.acceptances[id]
	if !ok || acceptance.Status != model.AcceptanceStatusAccepted {
		return false, nil
	}

	date := meeting.Date
	meetingType := meeting.Type
	acceptance.ScheduleDate = &date
	acceptance.MeetingType = &meetingType
	acceptance.MeetingLink = nil
	if meeting.Link != "" {
		link := meeting.Link
		acceptance.MeetingLink = &link
	}
	acceptance.Status = model.AcceptanceStatusScheduled
	r.tx.data.acceptances[id] = acceptance
	return true, nil
}

func (r *acceptanceRepo) UpdateStatus(ctx context.Context, id int64, from []model.AcceptanceStatus, to model.AcceptanceStatus) (bool, error) {
	if err := r.tx.check(ctx, "acceptances.update_status"); err != nil {
		return false, err
	}
	acceptance, ok := r.tx.data.acceptances[id]
	if !ok || !containsStatus(from, acceptance.Status) {
		return false, nil
	}
	acceptance.Status = to
	r.tx.data.acceptances[id] = acceptance
	return true, nil
}

type lessonRepo struct{ tx *Tx }

func (r *lessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	if err := r.tx.check(ctx, "lessons.create"); err != nil {
		return err
	}
	lesson.ID = r.tx.data.newID()
	lesson.CreatedAt = r.tx.now()
	r.tx.data.lessons[lesson.ID] = *lesson
	return nil
}

func (r *lessonRepo) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	if err := r.tx.check(ctx, "lessons.get_by_id"); err != nil {
		return nil, err
	}
	lesson, ok := r.tx.data.lessons[id]
	if !ok {
		return nil, nil
	}
	return &lesson, nil
}

func (r *lessonRepo) LockByID(ctx context.Context, id int64) (*model.Lesson, error) {
	if err := r.tx.check(ctx, "lessons.lock_by_id"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *lessonRepo) ListOpen(ctx context.Context, limit int) ([]*model.Lesson, error) {
	if err := r.tx.check(ctx, "lessons.list_open"); err != nil {
		return nil, err
	}
	var lessons []*model.Lesson
	for _, l := range r.tx.data.lessons {
		if l.Status != model.LessonStatusOpen {
			continue
		}
		l := l
		lessons = append(lessons, &l)
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID > lessons[j].ID })
	if limit > 0 && len(lessons) > limit {
		lessons = lessons[:limit]
	}
	return lessons, nil
}

func (r *lessonRepo) UpdateStatus(ctx context.Context, id int64, from []model.LessonStatus, to model.LessonStatus) (bool, error) {
	if err := r.tx.check(ctx, "lessons.update_status"); err != nil {
		return false, err
	}
	lesson, ok := r.tx.data.lessons[id]
	if !ok || !containsStatus(from, lesson.Status) {
		return false, nil
	}
	lesson.Status = to
	r.tx.data.lessons[id] = lesson
	return true, nil
}

func (r *lessonRepo) Schedule(ctx context.Context, id int64, at time.Time, from []model.LessonStatus) (bool, error) {
	if err := r.tx.check(ctx, "lessons.schedule"); err != nil {
		return false, err
	}
	lesson, ok := r.tx.data.lessons[id]
	if !ok || !containsStatus(from, lesson.Status) {
		return false, nil
	}
	lesson.Status = model.LessonStatusScheduled
	lesson.ScheduledAt = &at
	r.tx.data.lessons[id] = lesson
	return true, nil
}

type participantRepo struct{ tx *Tx }

func (r *participantRepo) Add(ctx context.Context, participant *model.LessonParticipant) error {
	if err := r.tx.check(ctx, "participants.add"); err != nil {
		return err
	}
	if _, ok := r.tx.data.lessons[participant.LessonID]; !ok {
		return apperr.New(apperr.KindNotFound, "add participant", "lesson not found")
	}
	key := participantKey{lessonID: participant.LessonID, userID: participant.UserID}
	if _, ok := r.tx.data.participants[key]; ok {
		return apperr.New(apperr.KindAlreadyJoined, "add participant", "already joined this lesson")
	}
	participant.JoinedAt = r.tx.now()
	r.tx.data.participants[key] = *participant
	return nil
}

func (r *participantRepo) Remove(ctx context.Context, lessonID, userID int64) (bool, error) {
	if err := r.tx.check(ctx, "participants.remove"); err != nil {
		return false, err
	}
	key := participantKey{lessonID: lessonID, userID: userID}
	if _, ok := r.tx.data.participants[key]; !ok {
		return false, nil
	}
	delete(r.tx.data.participants, key)
	return true, nil
}

func (r *participantRepo) Exists(ctx context.Context, lessonID, userID int64) (bool, error) {
	if err := r.tx.check(ctx, "participants.exists"); err != nil {
		return false, err
	}
	_, ok := r.tx.data.participants[participantKey{lessonID: lessonID, userID: userID}]
	return ok, nil
}

func (r *participantRepo) Count(ctx context.Context, lessonID int64) (int, error) {
	if err := r.tx.check(ctx, "participants.count"); err != nil {
		return 0, err
	}
	n := 0
	for key := range r.tx.data.participants {
		if key.lessonID == lessonID {
			n++
		}
	}
	return n, nil
}

func (r *participantRepo) ListUserIDs(ctx context.Context, lessonID int64) ([]int64, error) {
	if err := r.tx.check(ctx, "participants.list_user_ids"); err != nil {
		return nil, err
	}
	var ids []int64
	for key := range r.tx.data.participants {
		if key.lessonID == lessonID {
			ids = append(ids, key.userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type userRepo struct{ tx *Tx }

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	if err := r.tx.check(ctx, "users.create"); err != nil {
		return err
	}
	for _, u := range r.tx.data.users {
		if u.TelegramID == user.TelegramID {
			return apperr.New(apperr.KindConcurrencyConflict, "create user", "telegram id already registered")
		}
	}
	user.ID = r.tx.data.newID()
	user.CreatedAt = r.tx.now()
	r.tx.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	if err := r.tx.check(ctx, "users.update"); err != nil {
		return err
	}
	existing, ok := r.tx.data.users[user.ID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "update user", "user not found")
	}
	existing.Username = user.Username
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.LanguageCode = user.LanguageCode
	r.tx.data.users[user.ID] = existing
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if err := r.tx.check(ctx, "users.get_by_id"); err != nil {
		return nil, err
	}
	user, ok := r.tx.data.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	if err := r.tx.check(ctx, "users.get_by_telegram_id"); err != nil {
		return nil, err
	}
	for _, u := range r.tx.data.users {
		if u.TelegramID == telegramID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) LockByID(ctx context.Context, id int64) (*model.User, error) {
	if err := r.tx.check(ctx, "users.lock_by_id"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// LockAdminGuard в памяти ничего не делает: транзакции уже сериализованы
func (r *userRepo) LockAdminGuard(ctx context.Context) error {
	return r.tx.check(ctx, "users.lock_admin_guard")
}

func (r *userRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	if err := r.tx.check(ctx, "users.count_by_role"); err != nil {
		return 0, err
	}
	n := 0
	for _, u := range r.tx.data.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id int64, role model.Role) (bool, error) {
	if err := r.tx.check(ctx, "users.update_role"); err != nil {
		return false, err
	}
	user, ok := r.tx.data.users[id]
	if !ok {
		return false, nil
	}
	user.Role = role
	r.tx.data.users[id] = user
	return true, nil
}

// Delete удаляет пользователя вместе со связанными строками, как ON DELETE CASCADE в схеме
func (r *userRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if err := r.tx.check(ctx, "users.delete"); err != nil {
		return false, err
	}
	d := r.tx.data
	if _, ok := d.users[id]; !ok {
		return false, nil
	}
	delete(d.users, id)

	for reqID, req := range d.requests {
		if req.LearnerID == id {
			delete(d.requests, reqID)
			continue
		}
		if req.IsDirectedTo(id) {
			req.PreferredTutorID = nil
			d.requests[reqID] = req
		}
	}
	for accID, acc := range d.acceptances {
		if _, ok := d.requests[acc.RequestID]; !ok || acc.AcceptorID == id {
			delete(d.acceptances, accID)
		}
	}
	for lessonID, lesson := range d.lessons {
		if lesson.TutorID == id {
			delete(d.lessons, lessonID)
		}
	}
	for key := range d.participants {
		if _, ok := d.lessons[key.lessonID]; !ok || key.userID == id {
			delete(d.participants, key)
		}
	}

	return true, nil
}

func containsStatus[S ~string](statuses []S, status S) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
