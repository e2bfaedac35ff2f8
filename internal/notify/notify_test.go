package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintportal/internal/complaint"
	"complaintportal/internal/notify"
)

func TestInMemoryQueueRoundTrip(t *testing.T) {
	q := notify.NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := q.Consume(ctx)
	require.NoError(t, err)

	want := notify.Message{Type: "test", Body: []byte("payload")}
	require.NoError(t, q.Publish(ctx, want))

	select {
	case got := <-messages:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestInMemoryQueuePublishHonoursContext(t *testing.T) {
	q := notify.NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, q.Publish(ctx, notify.Message{Type: "fill"}))

	cancel()
	err := q.Publish(ctx, notify.Message{Type: "overflow"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJobEncodeDecode(t *testing.T) {
	job := notify.Job{
		Recipient:   "asha@institute.edu",
		Subject:     "subject",
		HTMLBody:    "<p>hi</p>",
		TextBody:    "hi",
		Category:    "Hostel",
		ComplaintID: "abc-123",
	}

	msg, err := notify.EncodeJob(notify.TypeComplaintRegistered, job)
	require.NoError(t, err)
	assert.Equal(t, notify.TypeComplaintRegistered, msg.Type)

	decoded, err := notify.DecodeJob(msg)
	require.NoError(t, err)
	assert.Equal(t, job, decoded)
}

func TestDecodeJobRejectsGarbage(t *testing.T) {
	_, err := notify.DecodeJob(notify.Message{Type: notify.TypeComplaintRegistered, Body: []byte("{")})
	assert.Error(t, err)
}

func TestBuildRegistrationJob(t *testing.T) {
	job := notify.BuildRegistrationJob(complaint.Complaint{
		ID:            "abc-123",
		Category:      complaint.CategoryHostel,
		ScholarNumber: "2211201099",
		StudentName:   "Asha <Verma>",
		UserEmail:     "asha@institute.edu",
		ComplainType:  "Maintenance",
		Description:   "Broken window",
		HostelNumber:  "H5",
		Room:          "H5-214",
		Status:        complaint.StatusPending,
		Attachments:   []string{"hostel/2211201099/photo.jpg"},
	})

	assert.Equal(t, "asha@institute.edu", job.Recipient)
	assert.Equal(t, "abc-123", job.ComplaintID)
	assert.Equal(t, "Hostel", job.Category)
	assert.Equal(t, []string{"hostel/2211201099/photo.jpg"}, job.AttachmentKeys)

	assert.Contains(t, job.TextBody, "successfully submitted")
	assert.Contains(t, job.TextBody, "Complaint ID: #abc-123")
	assert.Contains(t, job.TextBody, "Hostel Number: H5")
	assert.Contains(t, job.TextBody, "What's Next?")

	assert.Contains(t, job.HTMLBody, "Asha &lt;Verma&gt;", "student name must be escaped in HTML")
	assert.Contains(t, job.HTMLBody, "Broken window")
	assert.NotContains(t, job.HTMLBody, "Landmark", "empty fields stay out of the detail table")
}

func TestBuildFeedbackJob(t *testing.T) {
	job := notify.BuildFeedbackJob("complaints@example.edu", notify.Feedback{
		ScholarNumber: "2211201099",
		Name:          "Asha <Verma>",
		Stream:        "CSE",
		Description:   "Search could be faster",
		Attachments:   []string{"feedback/2211201099/shot.png"},
	})

	assert.Equal(t, "complaints@example.edu", job.Recipient)
	assert.Equal(t, "Feedback from 2211201099", job.Subject)
	assert.Equal(t, []string{"feedback/2211201099/shot.png"}, job.AttachmentKeys)

	assert.Contains(t, job.TextBody, "Scholar Number: 2211201099")
	assert.Contains(t, job.TextBody, "Search could be faster")
	assert.NotContains(t, job.TextBody, "Department", "empty fields stay out of the summary")

	assert.Contains(t, job.HTMLBody, "Asha &lt;Verma&gt;", "name must be escaped in HTML")
	assert.Contains(t, job.HTMLBody, "Feedback Submission")
}

func TestBuildRegistrationJobSkipsTypeWhenAbsent(t *testing.T) {
	job := notify.BuildRegistrationJob(complaint.Complaint{
		ID:            "rag-1",
		Category:      complaint.CategoryRagging,
		ScholarNumber: "2211201099",
		StudentName:   "Asha",
		UserEmail:     "asha@institute.edu",
		Description:   "Incident report",
		Status:        complaint.StatusPending,
	})
	assert.NotContains(t, job.TextBody, "Complaint Type")
}
