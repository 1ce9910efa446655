package codelab

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cloudanchor/anchor"
	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/manager"
	"github.com/viant/cloudanchor/shortcode"
)

type device struct {
	controller *Controller
	manager    *manager.Manager
	recorder   *Recorder
}

func newDevice(service cloud.Service, codes shortcode.Store) *device {
	m := manager.New(service)
	recorder := NewRecorder(0, logr.Discard())
	return &device{
		controller: New(m, codes, recorder, Options{}),
		manager:    m,
		recorder:   recorder,
	}
}

func (d *device) texts() []string {
	var ret []string
	for _, message := range d.recorder.Messages() {
		ret = append(ret, message.Text)
	}
	return ret
}

// frame advances the shared service and delivers results to every device.
func frame(service *cloud.MemoryService, devices ...*device) {
	service.Update()
	for _, d := range devices {
		d.manager.OnUpdate()
	}
}

type failingStore struct {
	shortcode.Store
}

func (f *failingStore) NextShortCode(context.Context) (int, error) {
	return 0, errors.New("store unavailable")
}

// blockingStore holds short code lookups until released.
type blockingStore struct {
	shortcode.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) GetCloudAnchorID(ctx context.Context, code int) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.GetCloudAnchorID(ctx, code)
}

func TestController_HostAndResolveAcrossDevices(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	codes := shortcode.NewMemoryStore()
	host := newDevice(service, codes)
	guest := newDevice(service, codes)

	placed, err := host.controller.PlaceAnchor(ctx, anchor.Translate(0.5, 0, -1))
	require.NoError(t, err)
	require.NotNil(t, placed)
	assert.Equal(t, anchor.StateTaskInProgress, placed.CloudState())
	assert.Same(t, placed, host.controller.Current())
	status := host.controller.Status()
	assert.False(t, status.ResolveEnabled)
	assert.Equal(t, 1, status.Pending)
	require.NotNil(t, status.Anchor)
	assert.Equal(t, placed.ID(), status.Anchor.ID)

	frame(service, host, guest)
	assert.Equal(t, []string{
		"Now hosting anchor...",
		fmt.Sprintf("Cloud Anchor Hosted. Short code: %d", shortcode.InitialShortCode),
	}, host.texts())
	hosted := host.controller.Current()
	assert.Same(t, placed, hosted)
	assert.Equal(t, anchor.StateSuccess, hosted.CloudState())
	assert.Equal(t, anchor.Tracking, hosted.TrackingState())

	require.NoError(t, guest.controller.ResolveShortCode(ctx, shortcode.InitialShortCode))
	assert.ErrorIs(t, guest.controller.ResolveShortCode(ctx, shortcode.InitialShortCode), ErrResolveDisabled)
	frame(service, host, guest)

	resolved := guest.controller.Current()
	require.NotNil(t, resolved)
	assert.Equal(t, hosted.CloudAnchorID(), resolved.CloudAnchorID())
	assert.Equal(t, anchor.Translate(0.5, 0, -1), resolved.Pose())
	last, ok := guest.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("Cloud Anchor Resolved. Short code: %d", shortcode.InitialShortCode), last.Text)
}

func TestController_PlaceTwice(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	d := newDevice(service, shortcode.NewMemoryStore())

	_, err := d.controller.PlaceAnchor(ctx, anchor.Identity())
	require.NoError(t, err)
	_, err = d.controller.PlaceAnchor(ctx, anchor.Identity())
	assert.ErrorIs(t, err, ErrAnchorExists)
}

func TestController_UnknownShortCode(t *testing.T) {
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	d := newDevice(service, shortcode.NewMemoryStore())

	err := d.controller.ResolveShortCode(context.Background(), 7)
	assert.ErrorIs(t, err, shortcode.ErrNotFound)
	assert.Equal(t, []string{"A Cloud Anchor ID for the short code 7 was not found."}, d.texts())
	assert.True(t, d.controller.Status().ResolveEnabled)
	assert.Equal(t, 0, d.manager.Pending())
}

func TestController_ResolveFailureReenablesResolve(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	codes := shortcode.NewMemoryStore()
	require.NoError(t, codes.StoreUsingShortCode(ctx, 500, "ua-missing"))
	d := newDevice(service, codes)

	require.NoError(t, d.controller.ResolveShortCode(ctx, 500))
	assert.False(t, d.controller.Status().ResolveEnabled)
	frame(service, d)

	last, ok := d.recorder.Last()
	require.True(t, ok)
	assert.True(t, last.IsError)
	assert.Equal(t, "Error while resolving anchor with short code 500. Error: ERROR_CLOUD_ID_NOT_FOUND", last.Text)
	assert.True(t, d.controller.Status().ResolveEnabled)
	assert.Nil(t, d.controller.Current())
}

func TestController_HostFailure(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{})
	d := newDevice(service, shortcode.NewMemoryStore())

	_, err := d.controller.PlaceAnchor(ctx, anchor.Identity())
	require.NoError(t, err)
	frame(service, d)

	last, ok := d.recorder.Last()
	require.True(t, ok)
	assert.True(t, last.IsError)
	assert.Equal(t, "Error while hosting: ERROR_NOT_AUTHORIZED", last.Text)
}

func TestController_HostedWithoutShortCode(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	d := newDevice(service, &failingStore{Store: shortcode.NewMemoryStore()})

	_, err := d.controller.PlaceAnchor(ctx, anchor.Identity())
	require.NoError(t, err)
	frame(service, d)

	last, ok := d.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "Cloud Anchor Hosted, but could not get a short code.", last.Text)
	assert.Equal(t, anchor.StateSuccess, d.controller.Current().CloudState())
}

func TestController_ClearDropsPendingResult(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	d := newDevice(service, shortcode.NewMemoryStore())

	placed, err := d.controller.PlaceAnchor(ctx, anchor.Identity())
	require.NoError(t, err)
	d.controller.Clear()
	assert.Equal(t, anchor.Stopped, placed.TrackingState())
	assert.Nil(t, d.controller.Current())

	frame(service, d)
	assert.Equal(t, []string{"Now hosting anchor..."}, d.texts())
	status := d.controller.Status()
	assert.True(t, status.ResolveEnabled)
	assert.Nil(t, status.Anchor)
	assert.Equal(t, 0, status.Pending)
}

func TestController_InvalidTTL(t *testing.T) {
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	m := manager.New(service)
	recorder := NewRecorder(0, logr.Discard())
	controller := New(m, shortcode.NewMemoryStore(), recorder, Options{HostTTLDays: cloud.MaxTTLDays + 1})

	_, err := controller.PlaceAnchor(context.Background(), anchor.Identity())
	assert.ErrorIs(t, err, cloud.ErrInvalidTTL)
	assert.Nil(t, controller.Current())
	assert.True(t, controller.Status().ResolveEnabled)
}

func TestController_ClearWhileResultIsDelivered(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	codes := shortcode.NewMemoryStore()
	require.NoError(t, codes.StoreUsingShortCode(ctx, 900, "ua-missing"))

	var controller *Controller
	// Clear runs after the result left the registry and before its listener
	clearOnFinish := funcr.New(func(_, args string) {
		if strings.Contains(args, "cloud operation finished") {
			controller.Clear()
		}
	}, funcr.Options{})
	m := manager.New(service, manager.WithLogger(clearOnFinish))
	recorder := NewRecorder(0, logr.Discard())
	controller = New(m, codes, recorder, Options{})

	hosting, err := controller.PlaceAnchor(ctx, anchor.Identity())
	require.NoError(t, err)
	service.Update()
	assert.Equal(t, 1, m.OnUpdate())

	status := controller.Status()
	assert.Nil(t, status.Anchor)
	assert.True(t, status.ResolveEnabled)
	assert.Equal(t, anchor.Stopped, hosting.TrackingState())
	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "Now hosting anchor...", last.Text)

	require.NoError(t, controller.ResolveShortCode(ctx, 900))
	service.Update()
	assert.Equal(t, 1, m.OnUpdate())
	assert.True(t, controller.Status().ResolveEnabled)
	assert.Len(t, recorder.Messages(), 1)
}

func TestController_ConcurrentResolve(t *testing.T) {
	ctx := context.Background()
	service := cloud.NewMemoryService(cloud.Options{APIKey: "key"})
	store := &blockingStore{
		Store:   shortcode.NewMemoryStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, store.Store.StoreUsingShortCode(ctx, 500, "ua-500"))
	d := newDevice(service, store)

	var wg sync.WaitGroup
	wg.Add(1)
	var first error
	go func() {
		defer wg.Done()
		first = d.controller.ResolveShortCode(ctx, 500)
	}()
	<-store.entered
	assert.ErrorIs(t, d.controller.ResolveShortCode(ctx, 500), ErrResolveDisabled)
	close(store.release)
	wg.Wait()

	require.NoError(t, first)
	assert.Equal(t, 1, d.manager.Pending())
	assert.False(t, d.controller.Status().ResolveEnabled)
}
